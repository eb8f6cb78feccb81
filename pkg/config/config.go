package config

import (
	"fmt"
	"os"

	"github.com/lvdund/asn1go/aper"
	rrcies "github.com/lvdund/rrc/ies"
	"gopkg.in/yaml.v3"
)

// Config is the yaml-facing configuration of the RRC layer. The broadcast
// message contents (MIB, SIB1, SIB templates) are not written by hand in the
// file; Derive fills them from the scalar fields below.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Cell     CellConfig     `yaml:"cell"`
	Coreless CorelessConfig `yaml:"coreless"`
	PUCCH    PUCCHConfig    `yaml:"pucch"`

	// SetupRetxIntervalMS is the connection-setup retransmission period in
	// milliseconds.
	SetupRetxIntervalMS int `yaml:"setup_retx_interval_ms"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	HexLimit int    `yaml:"hex_limit"`
}

type PLMNConfig struct {
	MCC string `yaml:"mcc"`
	MNC string `yaml:"mnc"`
}

// CellConfig describes the serving cell. MIB, SIB1 and SIBs are the derived
// broadcast contents; they may also be populated directly by callers that
// build configurations programmatically. SIBs is the template list the SIB1
// sib-MappingInfo entries refer to, indexed from sibType2.
type CellConfig struct {
	PLMN     PLMNConfig `yaml:"plmn"`
	PCI      uint16     `yaml:"pci"`
	CellID   uint64     `yaml:"cell_id"`
	NofPRB   uint32     `yaml:"nof_prb"`
	NofPorts uint32     `yaml:"nof_ports"`
	Barred   bool       `yaml:"barred"`

	MIB  rrcies.MIB                   `yaml:"-"`
	SIB1 rrcies.SIB1                  `yaml:"-"`
	SIBs []rrcies.Sib_TypeAndInfoItem `yaml:"-"`
}

// CorelessConfig identifies the statically attached terminal created at
// startup when no core network drives attachment.
type CorelessConfig struct {
	RNTI    uint16 `yaml:"rnti"`
	DRBLCID uint8  `yaml:"drb_lcid"`
}

type PUCCHConfig struct {
	SRNofPRB  uint32 `yaml:"sr_nof_prb"`
	CQINofPRB uint32 `yaml:"cqi_nof_prb"`
}

// Load reads, parses and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Cell.PLMN.MCC != "" {
		if len(c.Cell.PLMN.MCC) != 3 || !allDigits(c.Cell.PLMN.MCC) {
			return fmt.Errorf("cell.plmn.mcc must have 3 digits")
		}
	}
	if c.Cell.PLMN.MNC != "" {
		if (len(c.Cell.PLMN.MNC) != 2 && len(c.Cell.PLMN.MNC) != 3) || !allDigits(c.Cell.PLMN.MNC) {
			return fmt.Errorf("cell.plmn.mnc must have 2 or 3 digits")
		}
	}
	if c.Cell.CellID >= 1<<36 {
		return fmt.Errorf("cell.cell_id exceeds 36 bits")
	}
	if c.SetupRetxIntervalMS < 0 {
		return fmt.Errorf("setup_retx_interval_ms must not be negative")
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Defaulting rules applied by Derive. Each zero-valued input field takes the
// listed value; non-zero fields pass through untouched.
const (
	DefaultMCC               = "901"
	DefaultMNC               = "70"
	DefaultCellID            = 1
	DefaultNofPRB            = 25
	DefaultNofPorts          = 1
	DefaultCorelessRNTI      = 0x46
	DefaultCorelessDRBLCID   = 4
	DefaultSetupRetxInterval = 5000 // ms
	DefaultLogLevel          = "info"
	DefaultHexLimit          = 64
)

// Derive returns the effective configuration for a given input. It is a pure
// function: the input is never mutated, and calling it twice on the same
// value yields the same result. Besides scalar defaults it builds the
// broadcast contents: the MIB from the cell flags, SIB1 with the configured
// PLMN and one sibType2 scheduling entry, and the SIB2 template the entry
// references. Caller-provided MIB/SIB1/SIB values win over the derived ones.
func Derive(in Config) Config {
	out := in

	if out.Log.Level == "" {
		out.Log.Level = DefaultLogLevel
	}
	if out.Log.HexLimit <= 0 {
		out.Log.HexLimit = DefaultHexLimit
	}
	if out.SetupRetxIntervalMS == 0 {
		out.SetupRetxIntervalMS = DefaultSetupRetxInterval
	}
	if out.Cell.PLMN.MCC == "" {
		out.Cell.PLMN.MCC = DefaultMCC
	}
	if out.Cell.PLMN.MNC == "" {
		out.Cell.PLMN.MNC = DefaultMNC
	}
	if out.Cell.CellID == 0 {
		out.Cell.CellID = DefaultCellID
	}
	if out.Cell.NofPRB == 0 {
		out.Cell.NofPRB = DefaultNofPRB
	}
	if out.Cell.NofPorts == 0 {
		out.Cell.NofPorts = DefaultNofPorts
	}
	if out.Coreless.RNTI == 0 {
		out.Coreless.RNTI = DefaultCorelessRNTI
	}
	if out.Coreless.DRBLCID == 0 {
		out.Coreless.DRBLCID = DefaultCorelessDRBLCID
	}

	if len(out.Cell.MIB.SystemFrameNumber.Bytes) == 0 {
		out.Cell.MIB = deriveMIB(out.Cell.Barred)
	}
	if len(out.Cell.SIB1.CellAccessRelatedInfo.Plmn_IdentityInfoList.Value) == 0 {
		out.Cell.SIB1 = deriveSIB1(out.Cell.PLMN, out.Cell.CellID)
	}
	if len(out.Cell.SIBs) == 0 {
		out.Cell.SIBs = []rrcies.Sib_TypeAndInfoItem{{
			Choice: rrcies.Sib_TypeAndInfoItem_Choice_Sib2,
			Sib2:   deriveSIB2(),
		}}
	}

	return out
}

func deriveMIB(barred bool) rrcies.MIB {
	cellBarred := rrcies.MIB_cellBarred_Enum_notBarred
	if barred {
		cellBarred = rrcies.MIB_cellBarred_Enum_barred
	}
	return rrcies.MIB{
		SystemFrameNumber:       aper.BitString{Bytes: []byte{0x00}, NumBits: 6},
		SubCarrierSpacingCommon: rrcies.MIB_subCarrierSpacingCommon{Value: rrcies.MIB_subCarrierSpacingCommon_Enum_scs15or60},
		Ssb_SubcarrierOffset:    0,
		Dmrs_TypeA_Position:     rrcies.MIB_dmrs_TypeA_Position{Value: rrcies.MIB_dmrs_TypeA_Position_Enum_pos2},
		Pdcch_ConfigSIB1: rrcies.PDCCH_ConfigSIB1{
			ControlResourceSetZero: rrcies.ControlResourceSetZero{Value: 0},
			SearchSpaceZero:        rrcies.SearchSpaceZero{Value: 0},
		},
		CellBarred:           rrcies.MIB_cellBarred{Value: cellBarred},
		IntraFreqReselection: rrcies.MIB_intraFreqReselection{Value: rrcies.MIB_intraFreqReselection_Enum_allowed},
		Spare:                aper.BitString{Bytes: []byte{0x00}, NumBits: 1},
	}
}

func deriveSIB1(plmn PLMNConfig, cellID uint64) rrcies.SIB1 {
	return rrcies.SIB1{
		CellAccessRelatedInfo: rrcies.CellAccessRelatedInfo{
			Plmn_IdentityInfoList: rrcies.PLMN_IdentityInfoList{
				Value: []rrcies.PLMN_IdentityInfo{{
					Plmn_IdentityList: []rrcies.PLMN_Identity{PLMNIdentity(plmn.MCC, plmn.MNC)},
					CellIdentity:      CellIdentityBits(cellID),
					CellReservedForOperatorUse: rrcies.PLMN_IdentityInfo_cellReservedForOperatorUse{
						Value: rrcies.PLMN_IdentityInfo_cellReservedForOperatorUse_Enum_notReserved,
					},
				}},
			},
		},
		Si_SchedulingInfo: &rrcies.SI_SchedulingInfo{
			SchedulingInfoList: []rrcies.SchedulingInfo{{
				Si_BroadcastStatus: rrcies.SchedulingInfo_si_BroadcastStatus{
					Value: rrcies.SchedulingInfo_si_BroadcastStatus_Enum_broadcasting,
				},
				Si_Periodicity: rrcies.SchedulingInfo_si_Periodicity{
					Value: rrcies.SchedulingInfo_si_Periodicity_Enum_rf16,
				},
				Sib_MappingInfo: rrcies.SIB_Mapping{
					Value: []rrcies.SIB_TypeInfo{{
						Type_sib: rrcies.SIB_TypeInfo_type_sib{Value: rrcies.SIB_TypeInfo_type_sib_Enum_sibType2},
					}},
				},
			}},
			Si_WindowLength: rrcies.SI_SchedulingInfo_si_WindowLength{
				Value: rrcies.SI_SchedulingInfo_si_WindowLength_Enum_s20,
			},
		},
	}
}

func deriveSIB2() *rrcies.SIB2 {
	// Q_RxLevMin carries a signed dBm level in an unsigned field; the codec
	// converts through int64 on the wire.
	qRxLevMin := int64(-70)
	return &rrcies.SIB2{
		CellReselectionInfoCommon: &rrcies.SIB2_cellReselectionInfoCommon{
			Q_Hyst: rrcies.SIB2_cellReselectionInfoCommon_q_Hyst{
				Value: rrcies.SIB2_cellReselectionInfoCommon_q_Hyst_Enum_dB5,
			},
		},
		CellReselectionServingFreqInfo: &rrcies.SIB2_cellReselectionServingFreqInfo{
			ThreshServingLowP:       rrcies.ReselectionThreshold{Value: 0},
			CellReselectionPriority: rrcies.CellReselectionPriority{Value: 0},
		},
		IntraFreqCellReselectionInfo: &rrcies.SIB2_intraFreqCellReselectionInfo{
			Q_RxLevMin:              rrcies.Q_RxLevMin{Value: uint64(qRxLevMin)},
			S_IntraSearchP:          rrcies.ReselectionThreshold{Value: 31},
			T_ReselectionNR:         rrcies.T_Reselection{Value: 1},
			DeriveSSB_IndexFromCell: true,
		},
	}
}

// PLMNIdentity builds the PLMN identity record from decimal digit strings.
// Inputs are expected to have passed Validate.
func PLMNIdentity(mcc, mnc string) rrcies.PLMN_Identity {
	return rrcies.PLMN_Identity{
		Mcc: &rrcies.MCC{Value: plmnDigits(mcc)},
		Mnc: rrcies.MNC{Value: plmnDigits(mnc)},
	}
}

func plmnDigits(s string) []rrcies.MCC_MNC_Digit {
	digits := make([]rrcies.MCC_MNC_Digit, 0, len(s))
	for _, r := range s {
		digits = append(digits, rrcies.MCC_MNC_Digit{Value: uint64(r - '0')})
	}
	return digits
}

// CellIdentityBits packs a 36-bit cell identity into the bit-string form the
// codec expects, left-aligned in 5 bytes.
func CellIdentityBits(v uint64) rrcies.CellIdentity {
	shifted := v << 4
	return rrcies.CellIdentity{Value: aper.BitString{
		Bytes: []byte{
			byte(shifted >> 32),
			byte(shifted >> 24),
			byte(shifted >> 16),
			byte(shifted >> 8),
			byte(shifted),
		},
		NumBits: 36,
	}}
}

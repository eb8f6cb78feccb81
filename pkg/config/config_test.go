package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lvdund/asn1go/aper"
	rrcies "github.com/lvdund/rrc/ies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gnb.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func digitValues(digits []rrcies.MCC_MNC_Digit) []uint64 {
	out := make([]uint64, len(digits))
	for i, d := range digits {
		out[i] = d.Value
	}
	return out
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
cell:
  plmn:
    mcc: "208"
    mnc: "93"
  pci: 500
  cell_id: 17
coreless:
  rnti: 0x4a
setup_retx_interval_ms: 1000
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "208", cfg.Cell.PLMN.MCC)
	assert.Equal(t, "93", cfg.Cell.PLMN.MNC)
	assert.Equal(t, uint16(500), cfg.Cell.PCI)
	assert.Equal(t, uint64(17), cfg.Cell.CellID)
	assert.Equal(t, uint16(0x4a), cfg.Coreless.RNTI)
	assert.Equal(t, 1000, cfg.SetupRetxIntervalMS)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadPLMN(t *testing.T) {
	path := writeConfig(t, `
cell:
  plmn:
    mcc: "2080"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsNonDigitPLMN(t *testing.T) {
	cfg := Config{}
	cfg.Cell.PLMN.MCC = "2a8"
	assert.Error(t, cfg.Validate())
}

func TestValidateCellIDWidth(t *testing.T) {
	cfg := Config{}
	cfg.Cell.CellID = 1 << 36
	assert.Error(t, cfg.Validate())
}

func TestValidateNegativeRetxInterval(t *testing.T) {
	cfg := Config{SetupRetxIntervalMS: -1}
	assert.Error(t, cfg.Validate())
}

func TestDeriveDefaults(t *testing.T) {
	out := Derive(Config{})

	assert.Equal(t, DefaultLogLevel, out.Log.Level)
	assert.Equal(t, DefaultSetupRetxInterval, out.SetupRetxIntervalMS)
	assert.Equal(t, DefaultMCC, out.Cell.PLMN.MCC)
	assert.Equal(t, DefaultMNC, out.Cell.PLMN.MNC)
	assert.Equal(t, uint64(DefaultCellID), out.Cell.CellID)
	assert.Equal(t, uint32(DefaultNofPRB), out.Cell.NofPRB)
	assert.Equal(t, uint16(DefaultCorelessRNTI), out.Coreless.RNTI)
	assert.Equal(t, uint8(DefaultCorelessDRBLCID), out.Coreless.DRBLCID)

	mib := out.Cell.MIB
	assert.EqualValues(t, 6, mib.SystemFrameNumber.NumBits)
	assert.Equal(t, rrcies.MIB_subCarrierSpacingCommon_Enum_scs15or60, mib.SubCarrierSpacingCommon.Value)
	assert.Equal(t, rrcies.MIB_dmrs_TypeA_Position_Enum_pos2, mib.Dmrs_TypeA_Position.Value)
	assert.Equal(t, rrcies.MIB_cellBarred_Enum_notBarred, mib.CellBarred.Value)
	assert.Equal(t, rrcies.MIB_intraFreqReselection_Enum_allowed, mib.IntraFreqReselection.Value)

	plmnInfo := out.Cell.SIB1.CellAccessRelatedInfo.Plmn_IdentityInfoList.Value
	require.Len(t, plmnInfo, 1)
	require.Len(t, plmnInfo[0].Plmn_IdentityList, 1)
	plmn := plmnInfo[0].Plmn_IdentityList[0]
	require.NotNil(t, plmn.Mcc)
	assert.Equal(t, []uint64{9, 0, 1}, digitValues(plmn.Mcc.Value))
	assert.Equal(t, []uint64{7, 0}, digitValues(plmn.Mnc.Value))
	assert.EqualValues(t, 36, plmnInfo[0].CellIdentity.Value.NumBits)

	require.NotNil(t, out.Cell.SIB1.Si_SchedulingInfo)
	assert.Equal(t, rrcies.SI_SchedulingInfo_si_WindowLength_Enum_s20,
		out.Cell.SIB1.Si_SchedulingInfo.Si_WindowLength.Value)
	sched := out.Cell.SIB1.Si_SchedulingInfo.SchedulingInfoList
	require.Len(t, sched, 1)
	assert.Equal(t, rrcies.SchedulingInfo_si_BroadcastStatus_Enum_broadcasting, sched[0].Si_BroadcastStatus.Value)
	assert.Equal(t, rrcies.SchedulingInfo_si_Periodicity_Enum_rf16, sched[0].Si_Periodicity.Value)
	require.Len(t, sched[0].Sib_MappingInfo.Value, 1)
	assert.Equal(t, rrcies.SIB_TypeInfo_type_sib_Enum_sibType2, sched[0].Sib_MappingInfo.Value[0].Type_sib.Value)

	require.Len(t, out.Cell.SIBs, 1)
	assert.Equal(t, rrcies.Sib_TypeAndInfoItem_Choice_Sib2, out.Cell.SIBs[0].Choice)
	sib2 := out.Cell.SIBs[0].Sib2
	require.NotNil(t, sib2)
	require.NotNil(t, sib2.CellReselectionInfoCommon)
	assert.Equal(t, rrcies.SIB2_cellReselectionInfoCommon_q_Hyst_Enum_dB5, sib2.CellReselectionInfoCommon.Q_Hyst.Value)
	require.NotNil(t, sib2.IntraFreqCellReselectionInfo)
	assert.Equal(t, int64(-70), int64(sib2.IntraFreqCellReselectionInfo.Q_RxLevMin.Value))
}

func TestDeriveBarredCellPropagatesToMIB(t *testing.T) {
	var in Config
	in.Cell.Barred = true
	out := Derive(in)
	assert.Equal(t, rrcies.MIB_cellBarred_Enum_barred, out.Cell.MIB.CellBarred.Value)
}

func TestDeriveIsPure(t *testing.T) {
	var in Config
	in.Cell.PLMN.MCC = "208"

	first := Derive(in)
	second := Derive(in)
	assert.Equal(t, first, second)

	// Input stays untouched.
	assert.Equal(t, "", in.Log.Level)
	assert.Equal(t, 0, in.SetupRetxIntervalMS)
	assert.Empty(t, in.Cell.SIBs)
}

func TestDeriveKeepsCallerValues(t *testing.T) {
	var in Config
	in.Cell.PLMN.MCC = "208"
	in.Cell.PLMN.MNC = "93"
	in.SetupRetxIntervalMS = 250
	in.Cell.MIB = Derive(Config{}).Cell.MIB
	in.Cell.MIB.SystemFrameNumber = aper.BitString{Bytes: []byte{0x24}, NumBits: 6}

	out := Derive(in)
	assert.Equal(t, "208", out.Cell.PLMN.MCC)
	assert.Equal(t, 250, out.SetupRetxIntervalMS)
	assert.Equal(t, []byte{0x24}, out.Cell.MIB.SystemFrameNumber.Bytes)

	plmns := out.Cell.SIB1.CellAccessRelatedInfo.Plmn_IdentityInfoList.Value[0].Plmn_IdentityList
	require.Len(t, plmns, 1)
	require.NotNil(t, plmns[0].Mcc)
	assert.Equal(t, []uint64{2, 0, 8}, digitValues(plmns[0].Mcc.Value))
	assert.Equal(t, []uint64{9, 3}, digitValues(plmns[0].Mnc.Value))
}

func TestCellIdentityBits(t *testing.T) {
	id := CellIdentityBits(0x123456789)
	assert.EqualValues(t, 36, id.Value.NumBits)
	assert.Equal(t, []byte{0x12, 0x34, 0x56, 0x78, 0x90}, id.Value.Bytes)
}

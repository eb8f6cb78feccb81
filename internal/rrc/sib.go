package rrc

import (
	"fmt"

	rrclib "github.com/lvdund/rrc"
	rrcies "github.com/lvdund/rrc/ies"

	"gnb_rrc/internal/common/logger"
	"gnb_rrc/pkg/config"
)

// SystemInformationSet holds the packed broadcast payloads of a cell. The
// payloads are built once at startup and never change afterwards, so reads
// need no synchronization.
type SystemInformationSet struct {
	mib      []byte
	messages [][]byte // index 0 is SIB1, 1..k the SI messages
}

// MIB returns the packed BCCH-BCH payload.
func (s *SystemInformationSet) MIB() []byte { return s.mib }

// Message returns the packed BCCH-DL-SCH payload at the given index. Index 0
// is SIB1; indexes 1..NofSIMessages() are the SI messages.
func (s *SystemInformationSet) Message(index uint32) ([]byte, bool) {
	if int(index) >= len(s.messages) {
		return nil, false
	}
	return s.messages[index], true
}

// NofSIMessages returns the number of SI messages, SIB1 excluded.
func (s *SystemInformationSet) NofSIMessages() int { return len(s.messages) - 1 }

// Lengths returns the byte length of every BCCH-DL-SCH payload, SIB1 first.
func (s *SystemInformationSet) Lengths() []int {
	lengths := make([]int, len(s.messages))
	for i, m := range s.messages {
		lengths[i] = len(m)
	}
	return lengths
}

// BuildSystemInformation packs the MIB, SIB1 and one SI message per entry of
// the SIB1 scheduling-info list. Each entry's sib-MappingInfo is resolved
// against the configured templates, where sibType2 is template index 0; a
// mapping that points past the configured templates is a configuration error.
func BuildSystemInformation(cell config.CellConfig, log *logger.Logger) (*SystemInformationSet, error) {
	set := &SystemInformationSet{}

	mibCopy := cell.MIB
	mib, err := rrclib.Encode(&rrcies.BCCH_BCH_Message{
		Message: rrcies.BCCH_BCH_MessageType{
			Choice: rrcies.BCCH_BCH_MessageType_Choice_Mib,
			Mib:    &mibCopy,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pack MIB: %w", err)
	}
	set.mib = mib

	sib1 := cell.SIB1
	sib1Bytes, err := rrclib.Encode(&rrcies.BCCH_DL_SCH_Message{
		Message: rrcies.BCCH_DL_SCH_MessageType{
			Choice: rrcies.BCCH_DL_SCH_MessageType_Choice_C1,
			C1: &rrcies.BCCH_DL_SCH_MessageType_C1{
				Choice:                      rrcies.BCCH_DL_SCH_MessageType_C1_Choice_SystemInformationBlockType1,
				SystemInformationBlockType1: &sib1,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pack SIB1: %w", err)
	}
	set.messages = append(set.messages, sib1Bytes)

	var schedInfo []rrcies.SchedulingInfo
	if sib1.Si_SchedulingInfo != nil {
		schedInfo = sib1.Si_SchedulingInfo.SchedulingInfoList
	}
	for i, entry := range schedInfo {
		var ies rrcies.SystemInformation_IEs
		for j, mapping := range entry.Sib_MappingInfo.Value {
			idx := int(mapping.Type_sib.Value)
			if idx >= len(cell.SIBs) {
				return nil, fmt.Errorf("scheduling-info entry %d maps template index %d but only %d SIB templates are configured",
					i, idx, len(cell.SIBs))
			}
			if j == 0 {
				ies.Sib_TypeAndInfo = cell.SIBs[idx]
			}
		}
		siBytes, err := rrclib.Encode(&rrcies.BCCH_DL_SCH_Message{
			Message: rrcies.BCCH_DL_SCH_MessageType{
				Choice: rrcies.BCCH_DL_SCH_MessageType_Choice_C1,
				C1: &rrcies.BCCH_DL_SCH_MessageType_C1{
					Choice: rrcies.BCCH_DL_SCH_MessageType_C1_Choice_SystemInformation,
					SystemInformation: &rrcies.SystemInformation{
						CriticalExtensions: rrcies.SystemInformation_CriticalExtensions{
							Choice:            rrcies.SystemInformation_CriticalExtensions_Choice_SystemInformation,
							SystemInformation: &ies,
						},
					},
				},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("pack SI message %d: %w", i+1, err)
		}
		set.messages = append(set.messages, siBytes)
	}

	if log != nil {
		log.Info("Generated %d SI message(s) (SIB1 %d B)", set.NofSIMessages(), len(sib1Bytes))
		for i, m := range set.messages {
			log.HexDebug(m, "SI message payload index=%d", i)
		}
	}
	return set, nil
}

package rrc

import (
	rrclib "github.com/lvdund/rrc"
	rrcies "github.com/lvdund/rrc/ies"

	"gnb_rrc/internal/common/logger"
)

// ue is the per-terminal context. It is created attached and stays attached;
// there is no connection state machine yet, only the periodic connection
// setup retransmission that keeps a fresh terminal configured.
type ue struct {
	parent    *Controller
	log       *logger.Logger
	rnti      uint16
	txCounter uint8
}

func newUE(parent *Controller, rnti uint16) *ue {
	u := &ue{
		parent: parent,
		log:    parent.log,
		rnti:   rnti,
	}
	u.log.Info("Started RRC for rnti=0x%x", rnti)
	parent.retx.schedule(rnti, parent.setupInterval)
	return u
}

// nextTransactionID hands out the 2-bit procedure transaction identity,
// wrapping 0..3.
func (u *ue) nextTransactionID() uint8 {
	id := u.txCounter % 4
	u.txCounter++
	return id
}

// sendConnectionSetup packs and sends an RRCSetup on SRB0. The setup carries
// SRB1 plus DRB1 with PDCP ciphering disabled, matching the statically
// configured data path of the coreless terminal. Packing failures drop the
// message.
func (u *ue) sendConnectionSetup() {
	msg := rrcies.DL_CCCH_Message{
		Message: rrcies.DL_CCCH_MessageType{
			Choice: rrcies.DL_CCCH_MessageType_Choice_C1,
			C1: &rrcies.DL_CCCH_MessageType_C1{
				Choice: rrcies.DL_CCCH_MessageType_C1_Choice_RrcSetup,
				RrcSetup: &rrcies.RRCSetup{
					Rrc_TransactionIdentifier: rrcies.RRC_TransactionIdentifier{
						Value: uint64(u.nextTransactionID()),
					},
					CriticalExtensions: rrcies.RRCSetup_CriticalExtensions{
						Choice: rrcies.RRCSetup_CriticalExtensions_Choice_RrcSetup,
						RrcSetup: &rrcies.RRCSetup_IEs{
							RadioBearerConfig: u.setupRadioBearerConfig(),
							MasterCellGroup:   []byte{},
						},
					},
				},
			},
		},
	}

	pdu, err := rrclib.Encode(&msg)
	if err != nil {
		u.log.Error("Failed to pack DL-CCCH message. Discarding msg. (%v)", err)
		return
	}

	u.parent.logRRCMessage(SRB0.String(), dirTx, u.rnti, "RRCSetup", pdu)
	u.parent.rlc.WriteSDU(u.rnti, uint8(SRB0), pdu)
}

func (u *ue) setupRadioBearerConfig() rrcies.RadioBearerConfig {
	discardTimer := rrcies.PDCP_Config_drb_discardTimer{
		Value: rrcies.PDCP_Config_drb_discardTimer_Enum_infinity,
	}
	snSizeUL := rrcies.PDCP_Config_drb_pdcp_SN_SizeUL{
		Value: rrcies.PDCP_Config_drb_pdcp_SN_SizeUL_Enum_len18bits,
	}
	snSizeDL := rrcies.PDCP_Config_drb_pdcp_SN_SizeDL{
		Value: rrcies.PDCP_Config_drb_pdcp_SN_SizeDL_Enum_len18bits,
	}
	tReordering := rrcies.PDCP_Config_t_Reordering{
		Value: rrcies.PDCP_Config_t_Reordering_Enum_ms500,
	}
	cipheringDisabled := rrcies.PDCP_Config_cipheringDisabled{
		Value: rrcies.PDCP_Config_cipheringDisabled_Enum_true,
	}

	return rrcies.RadioBearerConfig{
		Srb_ToAddModList: &rrcies.SRB_ToAddModList{
			Value: []rrcies.SRB_ToAddMod{{
				Srb_Identity: rrcies.SRB_Identity{Value: 1},
			}},
		},
		Drb_ToAddModList: &rrcies.DRB_ToAddModList{
			Value: []rrcies.DRB_ToAddMod{{
				Drb_Identity: rrcies.DRB_Identity{Value: 1},
				Pdcp_Config: &rrcies.PDCP_Config{
					Drb: &rrcies.PDCP_Config_drb{
						DiscardTimer:   &discardTimer,
						Pdcp_SN_SizeUL: &snSizeUL,
						Pdcp_SN_SizeDL: &snSizeDL,
					},
					T_Reordering:      &tReordering,
					CipheringDisabled: &cipheringDisabled,
				},
			}},
		},
	}
}

// setupExpired runs on retransmission timer expiry: resend the setup and
// re-arm. Nothing in the uplink flow stops the cycle.
func (u *ue) setupExpired() {
	u.sendConnectionSetup()
	u.parent.retx.schedule(u.rnti, u.parent.setupInterval)
}

package rrc

import (
	rrclib "github.com/lvdund/rrc"
	rrcies "github.com/lvdund/rrc/ies"
)

// handleULCCCH processes an SRB0 uplink PDU. Unpacking failures drop the
// PDU; the terminal keeps its state either way.
func (c *Controller) handleULCCCH(u *ue, pdu []byte) {
	var msg rrcies.UL_CCCH_Message
	if err := rrclib.Decode(pdu, &msg); err != nil {
		c.log.Warn("Failed to unpack UL-CCCH message (rnti=0x%x, %d B): %v", u.rnti, len(pdu), err)
		c.log.HexDebug(pdu, "Discarded UL-CCCH payload")
		return
	}
	if msg.Message.Choice != rrcies.UL_CCCH_MessageType_Choice_C1 || msg.Message.C1 == nil {
		c.log.Warn("Unsupported UL-CCCH message choice (rnti=0x%x)", u.rnti)
		return
	}

	switch msg.Message.C1.Choice {
	case rrcies.UL_CCCH_MessageType_C1_Choice_RrcSetupRequest:
		c.logRRCMessage(SRB0.String(), dirRx, u.rnti, "RRCSetupRequest", pdu)
		if req := msg.Message.C1.RrcSetupRequest; req != nil {
			u.handleSetupRequest(req)
		}
	default:
		c.log.Warn("Unhandled UL-CCCH message c1 choice=%d (rnti=0x%x)", msg.Message.C1.Choice, u.rnti)
	}
}

// handleULDCCH processes an SRB1/SRB2 uplink PDU.
func (c *Controller) handleULDCCH(u *ue, lc LogicalChannel, pdu []byte) {
	var msg rrcies.UL_DCCH_Message
	if err := rrclib.Decode(pdu, &msg); err != nil {
		c.log.Warn("Failed to unpack UL-DCCH message (rnti=0x%x, %d B): %v", u.rnti, len(pdu), err)
		c.log.HexDebug(pdu, "Discarded UL-DCCH payload")
		return
	}
	if msg.Message.Choice != rrcies.UL_DCCH_MessageType_Choice_C1 || msg.Message.C1 == nil {
		c.log.Warn("Unsupported UL-DCCH message choice (rnti=0x%x)", u.rnti)
		return
	}

	switch msg.Message.C1.Choice {
	case rrcies.UL_DCCH_MessageType_C1_Choice_RrcSetupComplete:
		c.logRRCMessage(lc.String(), dirRx, u.rnti, "RRCSetupComplete", pdu)
		if cm := msg.Message.C1.RrcSetupComplete; cm != nil {
			u.handleSetupComplete(cm)
		}
	case rrcies.UL_DCCH_MessageType_C1_Choice_UlInformationTransfer:
		c.logRRCMessage(lc.String(), dirRx, u.rnti, "ULInformationTransfer", pdu)
		if tr := msg.Message.C1.UlInformationTransfer; tr != nil {
			u.handleULInformationTransfer(tr)
		}
	default:
		c.log.Warn("Unhandled UL-DCCH message c1 choice=%d (rnti=0x%x)", msg.Message.C1.Choice, u.rnti)
	}
}

// handleSetupRequest notes the request. The terminal is already attached and
// its bearers are configured statically, so nothing is (re)configured here;
// the periodic connection setup keeps answering.
func (u *ue) handleSetupRequest(req *rrcies.RRCSetupRequest) {
	u.log.Info("Connection request from rnti=0x%x (cause=%d)", u.rnti, req.RrcSetupRequest.EstablishmentCause.Value)
}

func (u *ue) handleSetupComplete(msg *rrcies.RRCSetupComplete) {
	u.log.Info("Connection setup complete from rnti=0x%x (tx_id=%d)", u.rnti, msg.Rrc_TransactionIdentifier.Value)
}

// handleULInformationTransfer extracts the embedded NAS PDU. No core network
// is attached, so the PDU is only accounted for.
func (u *ue) handleULInformationTransfer(msg *rrcies.ULInformationTransfer) {
	if msg.CriticalExtensions.Choice != rrcies.ULInformationTransfer_CriticalExtensions_Choice_UlInformationTransfer {
		u.log.Warn("ULInformationTransfer has unsupported critical extensions choice (rnti=0x%x)", u.rnti)
		return
	}
	ies := msg.CriticalExtensions.UlInformationTransfer
	if ies == nil || ies.DedicatedNAS_Message == nil || len(ies.DedicatedNAS_Message.Value) == 0 {
		u.log.Warn("ULInformationTransfer carries no NAS message (rnti=0x%x)", u.rnti)
		return
	}
	u.log.Info("Rx NAS PDU from rnti=0x%x (%d B)", u.rnti, len(ies.DedicatedNAS_Message.Value))
}

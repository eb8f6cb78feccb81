package rrc

import "time"

// LogicalChannel identifies the signalling and data paths multiplexed over
// the link layer. The signalling bearers form a closed set; anything above
// them is a data bearer configured separately.
type LogicalChannel uint8

const (
	SRB0 LogicalChannel = iota
	SRB1
	SRB2
)

func (lc LogicalChannel) String() string {
	switch lc {
	case SRB0:
		return "SRB0"
	case SRB1:
		return "SRB1"
	case SRB2:
		return "SRB2"
	default:
		return "DRB"
	}
}

// RLCMode selects the link-layer bearer mode.
type RLCMode uint8

const (
	RLCModeUM RLCMode = iota
	RLCModeAM
)

// RLCConfig is the bearer configuration handed to the link layer.
type RLCConfig struct {
	Mode          RLCMode
	SNFieldLength uint8
}

// DefaultRLCUMConfig returns the unacknowledged-mode configuration used for
// the coreless data bearer.
func DefaultRLCUMConfig(snFieldLength uint8) RLCConfig {
	return RLCConfig{Mode: RLCModeUM, SNFieldLength: snFieldLength}
}

// PDCPConfig is the bearer configuration handed to the ciphering layer.
type PDCPConfig struct {
	BearerID         uint8
	IsDRB            bool
	SNLen            uint8
	TReordering      time.Duration
	DiscardTimer     time.Duration // 0 means no discard (infinity)
	CipheringEnabled bool
}

// CellSchedConfig is the cell configuration pushed to the scheduler at
// startup: the byte length of every broadcast payload, the control-channel
// width and the cell parameters.
type CellSchedConfig struct {
	SIBLengths []int // index 0 is SIB1
	NRBPUCCH   uint32
	PCI        uint16
	NofPRB     uint32
	NofPorts   uint32
	CellID     uint64
}

// Scheduler is the MAC scheduler as seen from this layer.
type Scheduler interface {
	SetCellConfig(cfg CellSchedConfig)
}

// RLC is the link layer as seen from this layer. All calls are
// fire-and-forget.
type RLC interface {
	AddUser(rnti uint16)
	AddBearer(rnti uint16, lcid uint8, cfg RLCConfig)
	WriteSDU(rnti uint16, lcid uint8, sdu []byte)
}

// PDCP is the ciphering layer as seen from this layer.
type PDCP interface {
	AddUser(rnti uint16)
	AddBearer(rnti uint16, lcid uint8, cfg PDCPConfig)
}

// CoreNetwork and UserPlane are the NG interface attachment points. No
// procedure in this layer reaches them yet; they are held so later
// procedures have somewhere to go.
type CoreNetwork interface{}

type UserPlane interface{}

// UEMetrics is the per-terminal slice of a metrics snapshot.
type UEMetrics struct {
	RNTI  uint16
	State string
}

// Metrics is the monitoring snapshot returned by GetMetrics.
type Metrics struct {
	Users []UEMetrics
}

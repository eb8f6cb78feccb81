package stack

import (
	"context"
	"time"

	"gnb_rrc/internal/common/logger"
)

// BroadcastReader is the slice of the RRC layer the emulated radio frame
// pulls broadcast payloads from.
type BroadcastReader interface {
	ReadPDUBCCHBCH(buf []byte) (int, error)
	ReadPDUBCCHDLSCH(index uint32, buf []byte) (int, error)
}

// Broadcaster emulates the frame-timed broadcast pulls of the physical
// layer: the MIB every tick and the scheduled BCCH-DL-SCH payloads round
// robin. It stops when its context is cancelled.
type Broadcaster struct {
	log      *logger.Logger
	rrc      BroadcastReader
	interval time.Duration
	nofSI    int // BCCH-DL-SCH payload count, SIB1 included
}

func NewBroadcaster(log *logger.Logger, r BroadcastReader, interval time.Duration, nofSI int) *Broadcaster {
	return &Broadcaster{log: log, rrc: r, interval: interval, nofSI: nofSI}
}

func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	buf := make([]byte, 512)
	next := uint32(0)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := b.rrc.ReadPDUBCCHBCH(buf); err == nil {
				b.log.Trace("Broadcast BCCH-BCH (%d B)", n)
			}
			if b.nofSI == 0 {
				continue
			}
			if n, err := b.rrc.ReadPDUBCCHDLSCH(next, buf); err == nil {
				b.log.Trace("Broadcast BCCH-DL-SCH index=%d (%d B)", next, n)
			}
			next = (next + 1) % uint32(b.nofSI)
		}
	}
}

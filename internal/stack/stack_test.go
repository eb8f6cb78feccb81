package stack

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnb_rrc/internal/common/logger"
	"gnb_rrc/internal/rrc"
)

func testLog() *logger.Logger {
	return logger.InitLogger("warn", map[string]string{"mod": "TEST"})
}

func TestSchedStoresCellConfig(t *testing.T) {
	s := NewSched(testLog())

	_, ok := s.CellConfig()
	assert.False(t, ok)

	s.SetCellConfig(rrc.CellSchedConfig{PCI: 500, SIBLengths: []int{12, 7}})
	cell, ok := s.CellConfig()
	require.True(t, ok)
	assert.Equal(t, uint16(500), cell.PCI)
	assert.Len(t, cell.SIBLengths, 2)
}

func TestRLCEmuAccountsSDUs(t *testing.T) {
	var got []byte
	r := NewRLCEmu(testLog(), func(rnti uint16, lcid uint8, sdu []byte) { got = sdu })

	r.AddUser(0x46)
	r.AddBearer(0x46, 0, rrc.DefaultRLCUMConfig(6))
	r.WriteSDU(0x46, 0, []byte{0xca, 0xfe})

	assert.Equal(t, 1, r.TxSDUs())
	assert.Equal(t, []byte{0xca, 0xfe}, got)
}

func TestPDCPEmuStoresBearer(t *testing.T) {
	p := NewPDCPEmu(testLog())
	p.AddUser(0x46)
	p.AddBearer(0x46, 4, rrc.PDCPConfig{BearerID: 1, IsDRB: true})

	cfg, ok := p.Bearer(0x46, 4)
	require.True(t, ok)
	assert.True(t, cfg.IsDRB)

	_, ok = p.Bearer(0x46, 5)
	assert.False(t, ok)
}

type fakeReader struct {
	bch   int
	dlsch int
}

func (f *fakeReader) ReadPDUBCCHBCH(buf []byte) (int, error) {
	f.bch++
	return copy(buf, []byte{1, 2, 3}), nil
}

func (f *fakeReader) ReadPDUBCCHDLSCH(index uint32, buf []byte) (int, error) {
	f.dlsch++
	return copy(buf, []byte{4}), nil
}

func TestBroadcasterStopsOnCancel(t *testing.T) {
	r := &fakeReader{}
	b := NewBroadcaster(testLog(), r, time.Millisecond, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcaster did not stop")
	}
	assert.Positive(t, r.bch)
	assert.Positive(t, r.dlsch)
}

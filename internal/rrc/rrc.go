package rrc

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gnb_rrc/internal/common/logger"
	"gnb_rrc/pkg/config"
)

// ErrNotAvailable reports that a requested broadcast payload cannot be
// served, either because it does not exist or because the caller's buffer
// cannot hold it.
var ErrNotAvailable = errors.New("rrc: not available")

const (
	dirTx = "Tx"
	dirRx = "Rx"
)

// Controller is the cell-level RRC entity. It owns the packed system
// information, the terminal registry and the interfaces towards the lower
// layers. One mutex guards all mutable state; lower-layer calls are made
// while holding it, which is safe because those interfaces never call back.
type Controller struct {
	mu  sync.Mutex
	log *logger.Logger

	cfg           config.Config
	si            *SystemInformationSet
	users         map[uint16]*ue
	retx          *retxTimers
	setupInterval time.Duration
	running       bool

	sched Scheduler
	rlc   RLC
	pdcp  PDCP
	cn    CoreNetwork
	up    UserPlane
}

func New(log *logger.Logger) *Controller {
	c := &Controller{
		log:   log,
		users: make(map[uint16]*ue),
	}
	c.retx = newRetxTimers(c.setupRetxExpired)
	return c
}

// Init derives the effective configuration, packs the system information,
// configures the scheduler and creates the statically attached terminal.
// A system-information packing failure is fatal; everything after it is
// best-effort.
func (c *Controller) Init(cfg config.Config, sched Scheduler, rlc RLC, pdcp PDCP, cn CoreNetwork, up UserPlane) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("rrc: already running")
	}

	c.cfg = config.Derive(cfg)
	c.sched, c.rlc, c.pdcp, c.cn, c.up = sched, rlc, pdcp, cn, up
	c.setupInterval = time.Duration(c.cfg.SetupRetxIntervalMS) * time.Millisecond

	si, err := BuildSystemInformation(c.cfg.Cell, c.log)
	if err != nil {
		return fmt.Errorf("generate system information: %w", err)
	}
	c.si = si

	nrbPUCCH := c.cfg.PUCCH.SRNofPRB
	if c.cfg.PUCCH.CQINofPRB > nrbPUCCH {
		nrbPUCCH = c.cfg.PUCCH.CQINofPRB
	}
	c.sched.SetCellConfig(CellSchedConfig{
		SIBLengths: si.Lengths(),
		NRBPUCCH:   nrbPUCCH,
		PCI:        c.cfg.Cell.PCI,
		NofPRB:     c.cfg.Cell.NofPRB,
		NofPorts:   c.cfg.Cell.NofPorts,
		CellID:     c.cfg.Cell.CellID,
	})

	c.running = true
	c.log.Info("Started (cell_id=0x%x, pci=%d, prb=%d)", c.cfg.Cell.CellID, c.cfg.Cell.PCI, c.cfg.Cell.NofPRB)

	// Static terminal with a preconfigured data bearer, used until a core
	// network drives attachment.
	rnti := c.cfg.Coreless.RNTI
	c.addUserLocked(rnti)
	drbLCID := c.cfg.Coreless.DRBLCID
	c.rlc.AddBearer(rnti, drbLCID, DefaultRLCUMConfig(6))
	c.pdcp.AddBearer(rnti, drbLCID, PDCPConfig{
		BearerID:         1,
		IsDRB:            true,
		SNLen:            18,
		TReordering:      500 * time.Millisecond,
		DiscardTimer:     0,
		CipheringEnabled: false,
	})
	return nil
}

// Stop cancels all pending timers and releases the registry. Safe to call
// more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.retx.cancelAll()
	c.users = make(map[uint16]*ue)
	c.running = false
	c.log.Info("Stopped")
}

// ReadPDUBCCHBCH copies the packed MIB into buf and returns the number of
// bytes written.
func (c *Controller) ReadPDUBCCHBCH(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.si == nil {
		return 0, ErrNotAvailable
	}
	payload := c.si.MIB()
	if len(buf) < len(payload) {
		c.log.Error("Not enough space for the MIB (%d < %d)", len(buf), len(payload))
		return 0, ErrNotAvailable
	}
	return copy(buf, payload), nil
}

// ReadPDUBCCHDLSCH copies the BCCH-DL-SCH payload at index into buf. Index 0
// is SIB1, indexes 1..k the SI messages.
func (c *Controller) ReadPDUBCCHDLSCH(index uint32, buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.si == nil {
		return 0, ErrNotAvailable
	}
	payload, ok := c.si.Message(index)
	if !ok {
		c.log.Warn("Requested SIB index=%d is not scheduled", index)
		return 0, ErrNotAvailable
	}
	if len(buf) < len(payload) {
		c.log.Error("Not enough space for the SIB (%d < %d)", len(buf), len(payload))
		return 0, ErrNotAvailable
	}
	return copy(buf, payload), nil
}

// AddUser registers a terminal and creates it on the lower layers. Adding an
// rnti that already exists is a no-op, as is adding one before Init or after
// Stop.
func (c *Controller) AddUser(rnti uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		c.log.Warn("Not running, ignoring rnti=0x%x", rnti)
		return nil
	}
	c.addUserLocked(rnti)
	return nil
}

func (c *Controller) addUserLocked(rnti uint16) {
	if _, ok := c.users[rnti]; ok {
		c.log.Warn("rnti=0x%x already exists", rnti)
		return
	}
	c.users[rnti] = newUE(c, rnti)
	c.rlc.AddUser(rnti)
	c.pdcp.AddUser(rnti)
}

// RemoveUser drops a terminal from the registry and cancels its timers.
func (c *Controller) RemoveUser(rnti uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[rnti]; !ok {
		c.log.Warn("rnti=0x%x does not exist", rnti)
		return
	}
	c.retx.cancel(rnti)
	delete(c.users, rnti)
	c.log.Info("Removed rnti=0x%x", rnti)
}

// WritePDU delivers an uplink PDU received by the lower layers.
func (c *Controller) WritePDU(rnti uint16, lcid uint8, pdu []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.users[rnti]
	if !ok {
		c.log.Warn("Discarding PDU for removed rnti=0x%x", rnti)
		return
	}

	switch LogicalChannel(lcid) {
	case SRB0:
		c.handleULCCCH(u, pdu)
	case SRB1, SRB2:
		c.handleULDCCH(u, LogicalChannel(lcid), pdu)
	default:
		c.log.Error("Invalid LCID=%d", lcid)
	}
}

// GetMetrics returns the monitoring snapshot. Nothing populates it yet; the
// structure exists so the monitoring surface is stable.
func (c *Controller) GetMetrics() Metrics {
	return Metrics{}
}

// setupRetxExpired is the retransmission timer callback. The terminal is
// re-resolved under the lock; an expiry racing a removal is dropped here.
func (c *Controller) setupRetxExpired(rnti uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[rnti]
	if !ok {
		return
	}
	u.setupExpired()
}

func (c *Controller) logRRCMessage(channel string, dir string, rnti uint16, name string, pdu []byte) {
	c.log.Info("%s - rnti=0x%x %s %s (%d B)", channel, rnti, dir, name, len(pdu))
	c.log.HexDebug(pdu, "%s %s payload", dir, name)
}

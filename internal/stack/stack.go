// Package stack provides loopback lower layers so the RRC layer can run as a
// standalone process: a scheduler that records the pushed cell configuration,
// link and ciphering layers that account for users, bearers and SDUs, and
// empty NG attachment points.
package stack

import (
	"sync"

	"gnb_rrc/internal/common/logger"
	"gnb_rrc/internal/rrc"
)

// Sched records the cell configuration pushed at startup.
type Sched struct {
	mu   sync.Mutex
	log  *logger.Logger
	cell rrc.CellSchedConfig
	set  bool
}

func NewSched(log *logger.Logger) *Sched {
	return &Sched{log: log}
}

func (s *Sched) SetCellConfig(cfg rrc.CellSchedConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cell = cfg
	s.set = true
	s.log.Info("Cell configured (pci=%d, prb=%d, nrb_pucch=%d, %d broadcast payload(s))",
		cfg.PCI, cfg.NofPRB, cfg.NRBPUCCH, len(cfg.SIBLengths))
}

// CellConfig returns the last pushed configuration.
func (s *Sched) CellConfig() (rrc.CellSchedConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cell, s.set
}

// RLCEmu is a loopback link layer. Downlink SDUs are accounted and handed to
// an optional sink.
type RLCEmu struct {
	mu      sync.Mutex
	log     *logger.Logger
	sink    func(rnti uint16, lcid uint8, sdu []byte)
	bearers map[uint16]map[uint8]rrc.RLCConfig
	txSDUs  int
}

func NewRLCEmu(log *logger.Logger, sink func(rnti uint16, lcid uint8, sdu []byte)) *RLCEmu {
	return &RLCEmu{
		log:     log,
		sink:    sink,
		bearers: make(map[uint16]map[uint8]rrc.RLCConfig),
	}
}

func (r *RLCEmu) AddUser(rnti uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bearers[rnti]; !ok {
		r.bearers[rnti] = make(map[uint8]rrc.RLCConfig)
	}
	r.log.Debug("RLC user added rnti=0x%x", rnti)
}

func (r *RLCEmu) AddBearer(rnti uint16, lcid uint8, cfg rrc.RLCConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bearers[rnti]; !ok {
		r.bearers[rnti] = make(map[uint8]rrc.RLCConfig)
	}
	r.bearers[rnti][lcid] = cfg
	r.log.Debug("RLC bearer added rnti=0x%x lcid=%d mode=%d", rnti, lcid, cfg.Mode)
}

func (r *RLCEmu) WriteSDU(rnti uint16, lcid uint8, sdu []byte) {
	r.mu.Lock()
	r.txSDUs++
	sink := r.sink
	r.mu.Unlock()
	r.log.Debug("RLC Tx SDU rnti=0x%x lcid=%d (%d B)", rnti, lcid, len(sdu))
	if sink != nil {
		sink(rnti, lcid, sdu)
	}
}

// TxSDUs returns the number of downlink SDUs written so far.
func (r *RLCEmu) TxSDUs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.txSDUs
}

// PDCPEmu is a loopback ciphering layer that only accounts configuration.
type PDCPEmu struct {
	mu      sync.Mutex
	log     *logger.Logger
	bearers map[uint16]map[uint8]rrc.PDCPConfig
}

func NewPDCPEmu(log *logger.Logger) *PDCPEmu {
	return &PDCPEmu{
		log:     log,
		bearers: make(map[uint16]map[uint8]rrc.PDCPConfig),
	}
}

func (p *PDCPEmu) AddUser(rnti uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.bearers[rnti]; !ok {
		p.bearers[rnti] = make(map[uint8]rrc.PDCPConfig)
	}
	p.log.Debug("PDCP user added rnti=0x%x", rnti)
}

func (p *PDCPEmu) AddBearer(rnti uint16, lcid uint8, cfg rrc.PDCPConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.bearers[rnti]; !ok {
		p.bearers[rnti] = make(map[uint8]rrc.PDCPConfig)
	}
	p.bearers[rnti][lcid] = cfg
	p.log.Debug("PDCP bearer added rnti=0x%x lcid=%d drb=%t ciphering=%t",
		rnti, lcid, cfg.IsDRB, cfg.CipheringEnabled)
}

// Bearer returns the recorded configuration for a bearer, if any.
func (p *PDCPEmu) Bearer(rnti uint16, lcid uint8) (rrc.PDCPConfig, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cfg, ok := p.bearers[rnti][lcid]
	return cfg, ok
}

// NullCore and NullUserPlane stand in for the NG interfaces.
type NullCore struct{}

type NullUserPlane struct{}

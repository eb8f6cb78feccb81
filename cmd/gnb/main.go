package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"gnb_rrc/internal/common/logger"
	"gnb_rrc/internal/rrc"
	"gnb_rrc/internal/stack"
	"gnb_rrc/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/gnb.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	eff := config.Derive(*cfg)
	rrcLog := logger.InitLogger(eff.Log.Level, map[string]string{"mod": "RRC"})
	rrcLog.SetHexLimit(eff.Log.HexLimit)
	stackLog := logger.InitLogger(eff.Log.Level, map[string]string{"mod": "STACK"})

	ctrl := rrc.New(rrcLog)
	sched := stack.NewSched(stackLog)
	pdcp := stack.NewPDCPEmu(stackLog)
	rlc := stack.NewRLCEmu(stackLog, nil)

	if err := ctrl.Init(*cfg, sched, rlc, pdcp, stack.NullCore{}, stack.NullUserPlane{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to start RRC")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cell, ok := sched.CellConfig(); ok {
		bc := stack.NewBroadcaster(stackLog, ctrl, 80*time.Millisecond, len(cell.SIBLengths))
		go bc.Run(ctx)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Info().Msg("gNB RRC is running. Press Ctrl+C to stop.")
	<-sigChan

	cancel()
	ctrl.Stop()
	log.Info().Msg("Shutting down gNB RRC")
}

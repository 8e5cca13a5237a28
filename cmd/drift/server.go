package main

import (
	"context"

	"github.com/cfoust/drift/pkg/config"
	"github.com/cfoust/drift/pkg/enet"
	"github.com/cfoust/drift/pkg/server"

	"github.com/rs/zerolog/log"
)

func serverCommand(configs []string) error {
	cfg, err := config.Process(configs)
	if err != nil {
		return err
	}

	host, err := enet.Listen(cfg.Server.Port, cfg.Server.MaxPeers)
	if err != nil {
		return err
	}

	t, done, err := record(host, cfg.Server.Record)
	if err != nil {
		host.Close()
		return err
	}
	defer done()

	log.Info().
		Int("port", cfg.Server.Port).
		Int("maxPeers", cfg.Server.MaxPeers).
		Msg("listening")

	s := server.New(context.Background(), cfg.ServerConfig(), t)
	release := onInterrupt(s.Cancel)
	defer release()

	err = s.Run()

	stats := s.Stats()
	log.Info().
		Uint64("ticks", stats.Ticks).
		Uint64("joins", stats.Joins).
		Uint64("inputs", stats.InputsApplied).
		Uint64("snapshots", stats.Snapshots).
		Uint64("rejected", stats.Rejected).
		Dur("uptime", s.Uptime()).
		Msg("server stopped")

	t.Close()
	return err
}

package main

import (
	"context"
	"time"

	"github.com/cfoust/drift/pkg/client"
	"github.com/cfoust/drift/pkg/config"
	"github.com/cfoust/drift/pkg/enet"

	"github.com/rs/zerolog/log"
)

func clientCommand(configs []string) error {
	cfg, err := config.Process(configs)
	if err != nil {
		return err
	}

	seed := cfg.Client.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	controls, err := client.NewControls(string(cfg.Client.Controls), seed)
	if err != nil {
		return err
	}

	host, serverID, err := enet.Dial(cfg.Client.Address, cfg.Client.Port)
	if err != nil {
		return err
	}

	t, done, err := record(host, cfg.Client.Record)
	if err != nil {
		host.Close()
		return err
	}
	defer done()

	log.Info().
		Str("address", cfg.Client.Address).
		Int("port", cfg.Client.Port).
		Str("controls", string(cfg.Client.Controls)).
		Msg("connecting")

	c := client.New(context.Background(), cfg.ClientConfig(), t, serverID)
	release := onInterrupt(c.Cancel)
	defer release()

	err = c.Run(controls)

	stats := c.Stats()
	log.Info().
		Uint64("frames", stats.Frames).
		Uint64("inputs", stats.InputsSent).
		Uint64("confirmed", stats.Confirmations).
		Uint64("reconciled", stats.Reconciliations).
		Uint64("replayed", stats.Replayed).
		Dur("uptime", c.Uptime()).
		Msg("client stopped")

	t.Close()
	return err
}

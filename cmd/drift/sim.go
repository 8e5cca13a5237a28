package main

import (
	"context"
	"sync"
	"time"

	"github.com/cfoust/drift/pkg/client"
	"github.com/cfoust/drift/pkg/config"
	"github.com/cfoust/drift/pkg/server"
	"github.com/cfoust/drift/pkg/transport/loopback"

	"github.com/rs/zerolog/log"
)

func simCommand(configs []string) error {
	cfg, err := config.Process(configs)
	if err != nil {
		return err
	}

	network := loopback.NewNetwork(loopback.Options{
		Loss:    cfg.Sim.Loss,
		Reorder: cfg.Sim.Reorder,
		Seed:    cfg.Sim.Seed,
	})

	t, done, err := record(network.Listen(), cfg.Server.Record)
	if err != nil {
		return err
	}
	defer done()

	ctx, stop := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Sim.Seconds*float64(time.Second)),
	)
	defer stop()

	release := onInterrupt(stop)
	defer release()

	serverConfig := cfg.ServerConfig()
	if serverConfig.SpawnSeed == 0 {
		serverConfig.SpawnSeed = cfg.Sim.Seed
	}
	s := server.New(ctx, serverConfig, t)

	reports := s.Reports.Subscribe(16)
	defer reports.Done()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.Run(); err != nil {
			log.Error().Err(err).Msg("server failed")
		}
	}()

	bots := make([]*client.Client, 0, cfg.Sim.Bots)
	endpoints := make([]*loopback.Endpoint, 0, cfg.Sim.Bots)
	for i := 0; i < cfg.Sim.Bots; i++ {
		endpoint, serverID, err := network.Dial()
		if err != nil {
			return err
		}

		bot := client.New(ctx, cfg.ClientConfig(), endpoint, serverID)
		bots = append(bots, bot)
		endpoints = append(endpoints, endpoint)

		controls := client.NewRandomControls(cfg.Sim.Seed + int64(i) + 1)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bot.Run(controls); err != nil {
				log.Error().Err(err).Msg("bot failed")
			}
		}()
	}

	log.Info().
		Int("bots", cfg.Sim.Bots).
		Float64("loss", cfg.Sim.Loss).
		Float64("reorder", cfg.Sim.Reorder).
		Float64("seconds", cfg.Sim.Seconds).
		Msg("simulation started")

	rate := uint64(time.Second / serverConfig.TickDuration())

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case report := <-reports.Recv():
			if report.Tick%rate != 0 {
				continue
			}
			log.Info().
				Uint64("tick", report.Tick).
				Int("entities", report.Entities).
				Int("peers", report.Peers).
				Uint64("applied", report.Stats.InputsApplied).
				Uint64("dropped", report.Stats.InputsDropped).
				Msg("tick")
		}
	}

	wg.Wait()

	for i, bot := range bots {
		stats := bot.Stats()
		log.Info().
			Int("bot", i).
			Stringer("entity", bot.Controlled()).
			Uint64("inputs", stats.InputsSent).
			Uint64("confirmed", stats.Confirmations).
			Uint64("reconciled", stats.Reconciliations).
			Uint64("replayed", stats.Replayed).
			Uint64("stale", stats.SnapshotsDropped).
			Msg("bot summary")
		endpoints[i].Close()
	}

	networkStats := network.Stats()
	log.Info().
		Uint64("delivered", networkStats.Delivered).
		Uint64("dropped", networkStats.Dropped).
		Uint64("reordered", networkStats.Reordered).
		Dur("uptime", s.Uptime()).
		Msg("network summary")

	return t.Close()
}

package config

import (
	"github.com/cfoust/drift/pkg/client"
	"github.com/cfoust/drift/pkg/server"
)

type Controls string

const (
	ControlsRandom Controls = "random"
	ControlsCircle Controls = "circle"
	ControlsIdle   Controls = "idle"
)

type ServerSettings struct {
	Port           int    `json:"port" yaml:"port"`
	MaxPeers       int    `json:"maxPeers" yaml:"maxPeers"`
	TickRate       int    `json:"tickRate" yaml:"tickRate"`
	PauseWhenEmpty bool   `json:"pauseWhenEmpty" yaml:"pauseWhenEmpty"`
	Record         string `json:"record" yaml:"record"`
	SpawnSeed      int64  `json:"spawnSeed" yaml:"spawnSeed"`
}

type ClientSettings struct {
	Address              string   `json:"address" yaml:"address"`
	Port                 int      `json:"port" yaml:"port"`
	FrameRate            int      `json:"frameRate" yaml:"frameRate"`
	PositionTolerance    float32  `json:"positionTolerance" yaml:"positionTolerance"`
	OrientationTolerance float32  `json:"orientationTolerance" yaml:"orientationTolerance"`
	HistorySize          int      `json:"historySize" yaml:"historySize"`
	Controls             Controls `json:"controls" yaml:"controls"`
	Seed                 int64    `json:"seed" yaml:"seed"`
	Record               string   `json:"record" yaml:"record"`
}

type SimSettings struct {
	Bots    int     `json:"bots" yaml:"bots"`
	Loss    float64 `json:"loss" yaml:"loss"`
	Reorder float64 `json:"reorder" yaml:"reorder"`
	Seconds float64 `json:"seconds" yaml:"seconds"`
	Seed    int64   `json:"seed" yaml:"seed"`
}

type Config struct {
	Server ServerSettings `json:"server" yaml:"server"`
	Client ClientSettings `json:"client" yaml:"client"`
	Sim    SimSettings    `json:"sim" yaml:"sim"`
}

func (c *Config) ServerConfig() server.Config {
	return server.Config{
		TickRate:       c.Server.TickRate,
		PauseWhenEmpty: c.Server.PauseWhenEmpty,
		SpawnSeed:      c.Server.SpawnSeed,
	}
}

// ClientConfig shares the server's tick rate, which clients must agree on.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		TickRate:             c.Server.TickRate,
		FrameRate:            c.Client.FrameRate,
		PositionTolerance:    c.Client.PositionTolerance,
		OrientationTolerance: c.Client.OrientationTolerance,
		HistorySize:          c.Client.HistorySize,
	}
}

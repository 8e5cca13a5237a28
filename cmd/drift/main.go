package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/cfoust/drift/pkg/enet"
	"github.com/cfoust/drift/pkg/version"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type configs struct {
	Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files, merged in order." type:"existingfile"`
}

var CLI struct {
	Version kong.VersionFlag `help:"Print version information and exit." short:"v"`
	Debug   bool             `help:"Whether to enable debug logging."`

	Server configs `cmd:"" help:"Run the authoritative server over ENet."`
	Client configs `cmd:"" help:"Run a headless client over ENet."`
	Sim    configs `cmd:"" help:"Run a server and bots in one process over a lossy in-memory network."`
	Replay struct {
		File string `arg:"" name:"file" help:"Recording to decode." type:"existingfile"`
	} `cmd:"" help:"Print the messages in a traffic recording."`
	Config configs `cmd:"" help:"Write the effective configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

// onInterrupt calls stop on the first interrupt. The returned function
// removes the handler.
func onInterrupt(stop func()) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)

	released := make(chan struct{})
	go func() {
		select {
		case sig := <-sigs:
			log.Info().Msgf("terminating: %v", sig)
			stop()
		case <-released:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(released)
	}
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("drift"),
		kong.Description("authoritative state sync for a small 2D world"),
		kong.Vars{"version": "drift " + version.String()},
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	var err error
	switch ctx.Command() {
	case "server", "server <configs>":
		err = serverCommand(CLI.Server.Configs)
		enet.Deinitialize()
	case "client", "client <configs>":
		err = clientCommand(CLI.Client.Configs)
		enet.Deinitialize()
	case "sim", "sim <configs>":
		err = simCommand(CLI.Sim.Configs)
	case "replay <file>":
		err = replayCommand(CLI.Replay.File)
	case "config", "config <configs>":
		err = configCommand(CLI.Config.Configs)
	}

	if err != nil {
		writeError(err)
	}
}

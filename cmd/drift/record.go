package main

import (
	"fmt"
	"os"

	"github.com/cfoust/drift/pkg/recorder"
	"github.com/cfoust/drift/pkg/transport"

	"github.com/rs/zerolog/log"
)

// record wraps t in a recorder writing to path. The returned function
// closes the file; with an empty path t is returned unchanged.
func record(t transport.Transport, path string) (transport.Transport, func(), error) {
	if path == "" {
		return t, func() {}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create recording: %w", err)
	}

	r := recorder.New(t, file)
	log.Info().Str("path", path).Msg("recording traffic")

	return r, func() {
		if err := r.Err(); err != nil {
			log.Warn().Err(err).Msg("recording is incomplete")
		}
		log.Info().Uint64("frames", r.Frames()).Str("path", path).Msg("recording saved")
		file.Close()
	}, nil
}

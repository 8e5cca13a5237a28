package main

import (
	"fmt"
	"os"

	"github.com/cfoust/drift/pkg/protocol"
	"github.com/cfoust/drift/pkg/recorder"
	"github.com/cfoust/drift/pkg/transport"
)

func describe(frame recorder.Frame) string {
	if frame.Type != transport.EventReceive {
		return frame.Type.String()
	}

	message, err := protocol.Decode(frame.Data)
	if err != nil {
		return fmt.Sprintf("undecodable %d bytes: %v", len(frame.Data), err)
	}

	return fmt.Sprintf("%s %+v", message.Type(), message)
}

func replayCommand(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open recording: %w", err)
	}
	defer file.Close()

	count := 0
	err = recorder.NewReader(file).Each(func(frame recorder.Frame) error {
		count++
		fmt.Printf(
			"%8dms %s %s ch%d %s\n",
			frame.Millis,
			frame.Direction(),
			frame.Peer,
			frame.Channel,
			describe(frame),
		)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("%d frames\n", count)
	return nil
}

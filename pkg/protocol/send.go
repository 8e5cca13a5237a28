package protocol

import (
	"errors"
	"fmt"

	"github.com/cfoust/drift/pkg/transport"
)

// Send encodes the message and sends it to one peer on the message's channel.
func Send(t transport.Sender, peer transport.PeerID, message Message) error {
	err := t.Send(peer, ChannelFor(message.Type()), Encode(message))
	if err != nil {
		return fmt.Errorf("could not send %s to %s: %w", message.Type(), peer, err)
	}
	return nil
}

// Broadcast sends the message to every connected peer. A failure for one
// peer does not stop delivery to the others.
func Broadcast(t transport.Sender, message Message) error {
	data := Encode(message)
	channel := ChannelFor(message.Type())

	var errs []error
	for _, peer := range t.Peers() {
		if err := t.Send(peer, channel, data); err != nil {
			errs = append(errs, fmt.Errorf("could not send %s to %s: %w", message.Type(), peer, err))
		}
	}
	return errors.Join(errs...)
}

package recorder

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cfoust/drift/pkg/transport"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Frame is one recorded datagram or connection event.
type Frame struct {
	// Milliseconds since recording started.
	Millis   int64
	Outbound bool
	Peer     transport.PeerID
	Channel  uint8
	Type     transport.EventType
	Data     []byte
}

func (f Frame) Direction() string {
	if f.Outbound {
		return "->"
	}
	return "<-"
}

// Recorder wraps a transport and writes every event it polls and every
// datagram it sends to an io.Writer.
type Recorder struct {
	transport.Transport

	encoder *cbor.Encoder
	start   time.Time
	frames  uint64
	err     error
	logger  zerolog.Logger
}

var _ transport.Transport = (*Recorder)(nil)

func New(t transport.Transport, w io.Writer) *Recorder {
	return &Recorder{
		Transport: t,
		encoder:   cbor.NewEncoder(w),
		start:     time.Now(),
		logger:    log.With().Str("component", "recorder").Logger(),
	}
}

// record stops writing after the first error; Err reports it.
func (r *Recorder) record(frame Frame) {
	if r.err != nil {
		return
	}

	frame.Millis = time.Since(r.start).Milliseconds()
	if err := r.encoder.Encode(frame); err != nil {
		r.err = fmt.Errorf("could not write frame: %w", err)
		r.logger.Error().Err(err).Msg("recording stopped")
		return
	}
	r.frames++
}

func (r *Recorder) Send(peer transport.PeerID, channel uint8, data []byte) error {
	if err := r.Transport.Send(peer, channel, data); err != nil {
		return err
	}

	r.record(Frame{
		Outbound: true,
		Peer:     peer,
		Channel:  channel,
		Type:     transport.EventReceive,
		Data:     data,
	})
	return nil
}

func (r *Recorder) Poll() (transport.Event, bool) {
	event, ok := r.Transport.Poll()
	if !ok {
		return event, false
	}

	r.record(Frame{
		Peer:    event.Peer,
		Channel: event.Channel,
		Type:    event.Type,
		Data:    event.Data,
	})
	return event, true
}

// Frames is the number of frames written so far.
func (r *Recorder) Frames() uint64 {
	return r.frames
}

func (r *Recorder) Err() error {
	return r.err
}

// Reader decodes frames written by a Recorder.
type Reader struct {
	decoder *cbor.Decoder
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		decoder: cbor.NewDecoder(r),
	}
}

// Next returns the next frame, or io.EOF once the recording is exhausted.
func (r *Reader) Next() (Frame, error) {
	frame := Frame{}
	err := r.decoder.Decode(&frame)
	if errors.Is(err, io.EOF) {
		return frame, io.EOF
	}
	if err != nil {
		return frame, fmt.Errorf("could not read frame: %w", err)
	}
	return frame, nil
}

// Each calls fn for every remaining frame.
func (r *Reader) Each(fn func(Frame) error) error {
	for {
		frame, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(frame); err != nil {
			return err
		}
	}
}

package sse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const defaultReadSize = 32 * 1024

var (
	// ErrDecoderReused is returned when Consume is called more than once on
	// the same Decoder. A Decoder is bound to a single stream.
	ErrDecoderReused = errors.New("sse: decoder already consumed a stream")

	// ErrFrameTooLarge is returned when an unterminated frame grows past the
	// limit configured with WithMaxPending.
	ErrFrameTooLarge = errors.New("sse: pending frame exceeds limit")
)

// Sink receives decoded chunk content in stream order. Returning an error
// stops consumption and the error is returned from Consume.
type Sink func(content string) error

// Decoder converts a raw byte stream into an ordered sequence of chunk
// contents. Create one Decoder per stream.
//
//	┌──────────────────┐
//	│ source io.Reader │  arbitrary byte chunks
//	└──────────────────┘
//	         │
//	         ▼
//	┌──────────────────┐
//	│  UTF-8 decoder   │  carries split runes across reads
//	└──────────────────┘
//	         │
//	         ▼
//	┌──────────────────┐
//	│  pending buffer  │  split on '\n', remainder kept
//	└──────────────────┘
//	         │
//	         ▼
//	┌──────────────────┐
//	│   Sink(content)  │  chunk envelopes only
//	└──────────────────┘
type Decoder struct {
	readSize   int
	maxPending int

	// pending holds decoded text after the last '\n' seen so far.
	pending []byte
	used    bool
}

// Option configures a Decoder created with NewDecoder.
type Option func(*Decoder)

// WithMaxPending caps the size in bytes of an unterminated trailing frame.
// Zero, the default, leaves the pending buffer unbounded.
func WithMaxPending(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxPending = n
		}
	}
}

// WithReadSize sets the size of the buffer handed to each underlying read.
func WithReadSize(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.readSize = n
		}
	}
}

// NewDecoder returns a Decoder ready to consume a single stream.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{readSize: defaultReadSize}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Consume decodes a stream with a fresh Decoder. See Decoder.Consume.
func Consume(ctx context.Context, r io.Reader, sink Sink) error {
	return NewDecoder().Consume(ctx, r, sink)
}

// Consume reads r until it reports io.EOF or ctx is cancelled, calling sink
// with the content of every complete chunk frame in stream order.
//
// Cancellation is cooperative and checked once per read: before issuing the
// next read and again once it returns. A chunk that arrives after
// cancellation is dropped unprocessed. Cancellation is not an error and
// Consume returns nil.
//
// A read error other than io.EOF is returned after the frames completed by
// that read have been delivered. An unterminated trailing frame is never
// delivered. Malformed frames are skipped without error.
func (d *Decoder) Consume(ctx context.Context, r io.Reader, sink Sink) error {
	if d.used {
		return ErrDecoderReused
	}
	d.used = true
	defer func() { d.pending = nil }()

	// UTF8BOM strips a leading byte order mark and holds back the bytes of a
	// rune split across reads until the rest of it arrives.
	src := transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	buf := make([]byte, d.readSize)

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, readErr := src.Read(buf)

		if ctx.Err() != nil {
			return nil
		}

		if n > 0 {
			if err := d.feed(buf[:n], sink); err != nil {
				return err
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading stream: %w", readErr)
		}
	}
}

// feed appends decoded text to the pending buffer and dispatches every
// complete frame it now contains.
func (d *Decoder) feed(text []byte, sink Sink) error {
	d.pending = append(d.pending, text...)

	start := 0
	for {
		i := bytes.IndexByte(d.pending[start:], '\n')
		if i < 0 {
			break
		}

		frame := d.pending[start : start+i]
		start += i + 1

		if err := dispatch(frame, sink); err != nil {
			return err
		}
	}

	if start > 0 {
		d.pending = append(d.pending[:0], d.pending[start:]...)
	}

	if d.maxPending > 0 && len(d.pending) > d.maxPending {
		return fmt.Errorf("%w: %d bytes without a newline", ErrFrameTooLarge, len(d.pending))
	}

	return nil
}

// dispatch handles a single complete frame.
func dispatch(frame []byte, sink Sink) error {
	line := strings.TrimSuffix(string(frame), "\r")

	payload, ok := strings.CutPrefix(line, DataPrefix)
	if !ok {
		return nil
	}

	content, ok := chunkContent(payload)
	if !ok {
		return nil
	}

	if err := sink(content); err != nil {
		return fmt.Errorf("content sink: %w", err)
	}
	return nil
}

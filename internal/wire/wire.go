// Package wire implements the exchange's frame encoding: each message
// travels as a 2-byte big-endian length prefix followed by that many
// UTF-8 payload bytes. There is no version byte, no type discriminator,
// and no checksum; the codec knows nothing about message semantics.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"shout/internal/errors"
)

const (
	// MaxPayload is the largest encodable message in bytes, imposed by
	// the 2-byte length prefix.
	MaxPayload = 1<<16 - 1

	// HeaderSize is the size of the length prefix in bytes.
	HeaderSize = 2
)

// Append appends one encoded frame for msg to dst and returns the
// extended slice. The message must be valid UTF-8 and its byte count
// (not character count) must fit the length prefix.
func Append(dst []byte, msg string) ([]byte, error) {
	if len(msg) > MaxPayload {
		return dst, fmt.Errorf("%d bytes: %w", len(msg), errors.ErrMessageTooLong)
	}
	if !utf8.ValidString(msg) {
		return dst, errors.ErrInvalidUTF8
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(msg)))
	return append(dst, msg...), nil
}

// Encode returns one encoded frame for msg.
func Encode(msg string) ([]byte, error) {
	return Append(make([]byte, 0, HeaderSize+len(msg)), msg)
}

// Read decodes exactly one frame from r, blocking until the full
// payload has arrived.
//
// A clean EOF before the first header byte is a normal connection
// close and is returned as io.EOF. A stream that ends mid-header or
// mid-payload, or a payload that is not valid UTF-8, is returned as a
// *errors.FrameError.
func Read(r io.Reader) (string, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return "", io.EOF
		}
		return "", errors.Malformed("read", err)
	}

	payload := make([]byte, binary.BigEndian.Uint16(header[:]))
	if _, err := io.ReadFull(r, payload); err != nil {
		// EOF here means the stream closed before the declared byte
		// count was satisfied: a truncated frame, not a clean close.
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", errors.Malformed("read", err)
	}

	if !utf8.Valid(payload) {
		return "", errors.Malformed("read", errors.ErrInvalidUTF8)
	}
	return string(payload), nil
}

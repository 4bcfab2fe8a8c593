// Package wire implements the Content-Length framed message codec used both
// on the editor connection and on companion-runtime RPC connections.
package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrFrame is returned for malformed frame headers.
var ErrFrame = errors.New("wire: malformed frame")

const contentLengthHeader = "content-length"

// maxFrameSize bounds a single frame at 128 MiB to keep a corrupt header
// from exhausting memory.
const maxFrameSize = 128 << 20

// ReadFrame reads one framed message payload.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	length := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: header %q", ErrFrame, line)
		}
		if strings.ToLower(strings.TrimSpace(name)) == contentLengthHeader {
			length, err = strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("%w: content length %q", ErrFrame, value)
			}
		}
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: missing content length", ErrFrame)
	}
	if length > maxFrameSize {
		return nil, fmt.Errorf("%w: frame of %d bytes exceeds limit", ErrFrame, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes one framed message payload.
func WriteFrame(w io.Writer, payload []byte) error {
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

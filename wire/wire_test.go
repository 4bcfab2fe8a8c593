package wire

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}

	got, err := ReadFrame(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("ReadFrame() = %q, want %q", got, payload)
	}
}

func TestReadFrameExtraHeaders(t *testing.T) {
	raw := "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\n" +
		"Content-Length: 2\r\n\r\nok"
	got, err := ReadFrame(bufio.NewReader(strings.NewReader(raw)))
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if string(got) != "ok" {
		t.Errorf("ReadFrame() = %q", got)
	}
}

func TestReadFrameMissingLength(t *testing.T) {
	raw := "Content-Type: text/plain\r\n\r\nhi"
	_, err := ReadFrame(bufio.NewReader(strings.NewReader(raw)))
	if !errors.Is(err, ErrFrame) {
		t.Fatalf("ReadFrame() error = %v, want ErrFrame", err)
	}
}

func TestReadFrameMalformedHeader(t *testing.T) {
	raw := "not a header\r\n\r\n"
	_, err := ReadFrame(bufio.NewReader(strings.NewReader(raw)))
	if !errors.Is(err, ErrFrame) {
		t.Fatalf("ReadFrame() error = %v, want ErrFrame", err)
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	raw := "Content-Length: 10\r\n\r\nshort"
	_, err := ReadFrame(bufio.NewReader(strings.NewReader(raw)))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("ReadFrame() error = %v, want unexpected EOF", err)
	}
}

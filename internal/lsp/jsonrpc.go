package lsp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
)

// maxMessageSize bounds a single JSON-RPC payload.
const maxMessageSize = 64 << 20

var errNoContentLength = errors.New("missing Content-Length header")

// readMessage reads one base-protocol frame: MIME-style headers, a blank
// line, then Content-Length bytes of JSON.
func readMessage(r *bufio.Reader) ([]byte, error) {
	header, err := textproto.NewReader(r).ReadMIMEHeader()
	if err != nil {
		return nil, err
	}
	raw := header.Get("Content-Length")
	if raw == "" {
		return nil, errNoContentLength
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil || n < 0:
		return nil, fmt.Errorf("invalid Content-Length %q", raw)
	case n > maxMessageSize:
		return nil, fmt.Errorf("message of %d bytes exceeds limit", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func writeMessage(w io.Writer, payload []byte) error {
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

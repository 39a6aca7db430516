package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// HexLogger dumps raw descriptor buffers as labelled hex, 16 bytes per
// line, matching the layout of typical USB analyzer output.
type HexLogger interface {
	Dump(label string, data []byte)
}

// hexLogger implements HexLogger with thread-safe output.
type hexLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewHex creates a new HexLogger. If writer is nil, returns a no-op
// logger.
func NewHex(w io.Writer) HexLogger {
	return &hexLogger{w: w}
}

func (h *hexLogger) Dump(label string, data []byte) {
	if h.w == nil || len(data) == 0 {
		return
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s (%d bytes):\n", label, len(data))
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		buf.WriteByte(hexdigits[b>>4])
		buf.WriteByte(hexdigits[b&0x0f])
		if (i+1)%16 == 0 {
			buf.WriteByte('\n')
		} else {
			buf.WriteByte(' ')
		}
	}
	if len(data)%16 != 0 {
		buf.WriteByte('\n')
	}

	h.mu.Lock()
	_, _ = h.w.Write(buf.Bytes())
	h.mu.Unlock()
}

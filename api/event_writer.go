package api

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// EventWriter is an io.Writer that mirrors a debugger service's sink writes
// to WebSocket clients through a Broadcaster, buffering everything written
// so a late-subscribing client can still fetch what it missed via
// GetBuffer. One instance covers the program's own stdout/stderr; a second,
// constructed with stream "diagnostics", carries the console's ReportError
// messages (unknown ecall codes, malformed numeric input) instead.
type EventWriter struct {
	broadcaster *Broadcaster
	sessionID   string
	stream      string // "stdout", "stderr", or "diagnostics"
	buffer      *bytes.Buffer
	mutex       sync.Mutex
}

// NewEventWriter creates a new event-broadcasting writer
func NewEventWriter(broadcaster *Broadcaster, sessionID string, stream string) *EventWriter {
	return &EventWriter{
		broadcaster: broadcaster,
		sessionID:   sessionID,
		stream:      stream,
		buffer:      &bytes.Buffer{},
	}
}

// Write implements io.Writer. Diagnostics messages (written a line at a
// time by service.teeConsole.ReportError) are broadcast as execution
// events; everything else is ordinary console output.
func (w *EventWriter) Write(p []byte) (n int, err error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	n, err = w.buffer.Write(p)
	if err == nil && n > 0 && w.broadcaster != nil {
		if w.stream == "diagnostics" {
			w.broadcaster.BroadcastDiagnostic(w.sessionID, strings.TrimSuffix(string(p), "\n"))
		} else {
			w.broadcaster.BroadcastOutput(w.sessionID, w.stream, string(p))
		}
	}
	return n, err
}

// GetBufferAndClear returns the buffer contents and clears it
// This is useful for retrieving accumulated output
func (w *EventWriter) GetBufferAndClear() string {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	output := w.buffer.String()
	w.buffer.Reset()
	return output
}

// GetBuffer returns the current buffer contents without clearing
func (w *EventWriter) GetBuffer() string {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.buffer.String()
}

// Ensure EventWriter implements io.Writer
var _ io.Writer = (*EventWriter)(nil)

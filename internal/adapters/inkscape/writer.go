package inkscape

import (
	"bytes"
	"sync"

	"go.trai.ch/iconsmith/internal/core/ports"
)

// lineWriter forwards complete lines of subprocess output to the logger.
type lineWriter struct {
	mu     sync.Mutex
	logger ports.Logger
	prefix string
	buf    bytes.Buffer
}

func newLineWriter(logger ports.Logger, prefix string) *lineWriter {
	return &lineWriter{logger: logger, prefix: prefix}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Keep the partial line for the next write.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.emit(line[:len(line)-1])
	}
	return len(p), nil
}

// Flush emits any trailing partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *lineWriter) emit(line string) {
	line = string(bytes.TrimRight([]byte(line), "\r"))
	if line == "" {
		return
	}
	w.logger.Debug(w.prefix + line)
}

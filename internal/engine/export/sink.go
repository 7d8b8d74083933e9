package export

import (
	"fmt"

	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
)

// LogSink writes finished tasks to a logger.
type LogSink struct {
	logger ports.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger ports.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Report implements ports.ProgressSink. Only terminal updates are logged.
func (s *LogSink) Report(update domain.ExportUpdate) {
	if !update.Status.IsTerminal() {
		return
	}
	line := fmt.Sprintf("[%d/%d] %s", update.Completed, update.Total, update.Message)
	if update.Status == domain.TaskStatusFailed {
		s.logger.Warn(line)
		return
	}
	s.logger.Info(line)
}

// MultiSink fans updates out to several sinks in order.
type MultiSink []ports.ProgressSink

// Report implements ports.ProgressSink.
func (m MultiSink) Report(update domain.ExportUpdate) {
	for _, s := range m {
		if s != nil {
			s.Report(update)
		}
	}
}

package domain

// TaskStatus represents the lifecycle state of one export task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates the rasterizer is working on the task.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusRendered indicates a new output file was written.
	TaskStatusRendered TaskStatus = "rendered"
	// TaskStatusSkipped indicates the existing output was newer than the source.
	TaskStatusSkipped TaskStatus = "skipped"
	// TaskStatusFailed indicates the rasterizer gave up on the task.
	TaskStatusFailed TaskStatus = "failed"
)

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// IsTerminal checks if a status is a terminal state.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusRendered, TaskStatusSkipped, TaskStatusFailed:
		return true
	default:
		return false
	}
}

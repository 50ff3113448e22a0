package stockpot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// AttemptLogger is the interface for recording individual generation attempts.
type AttemptLogger interface {
	LogAttempt(attempt AttemptLog) error
}

// NewAttemptLogFilePath returns a file path based on a cleaned up model name or id to make it easier to identify logs produced with various models.
func NewAttemptLogFilePath(model string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(model), ":", "_"),
	)
}

// AttemptLog captures one attempt against the external model, including the
// rejection reason when validation turned the response away.
type AttemptLog struct {
	Attempt   int       `json:"attempt"`
	Timestamp time.Time `json:"timestamp"`
	Prompt    string    `json:"prompt,omitempty"`
	RawOutput string    `json:"raw_output,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FileAttemptLogger logs to a file, accumulating attempts and flushing at the end
type FileAttemptLogger struct {
	attempts []AttemptLog
	writer   io.Writer
}

// NewFileAttemptLogger creates a new file-based attempt logger
func NewFileAttemptLogger(writer io.Writer) *FileAttemptLogger {
	return &FileAttemptLogger{
		attempts: make([]AttemptLog, 0),
		writer:   writer,
	}
}

// LogAttempt logs an attempt to the buffer (does not flush immediately)
func (fal *FileAttemptLogger) LogAttempt(attempt AttemptLog) error {
	fal.attempts = append(fal.attempts, attempt)
	return nil
}

// Flush flushes all accumulated attempts to the writer
func (fal *FileAttemptLogger) Flush() error {
	if fal.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"generation_session": map[string]any{
			"timestamp": time.Now(),
			"attempts":  fal.attempts,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal attempt log: %w", err)
	}

	if _, err := fal.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write attempt log: %w", err)
	}

	// Clear the buffer after successful write
	fal.attempts = fal.attempts[:0]
	return nil
}

// NoOpAttemptLogger is a logger that discards all log entries
type NoOpAttemptLogger struct{}

// NewNoOpAttemptLogger creates a new no-op attempt logger
func NewNoOpAttemptLogger() *NoOpAttemptLogger {
	return &NoOpAttemptLogger{}
}

// LogAttempt discards the attempt log (no-op)
func (nop *NoOpAttemptLogger) LogAttempt(attempt AttemptLog) error {
	return nil
}

// StdoutAttemptLogger logs each attempt as a JSON line to stdout (for Lambda/CloudWatch)
type StdoutAttemptLogger struct{}

// NewStdoutAttemptLogger creates a new stdout-based attempt logger
func NewStdoutAttemptLogger() *StdoutAttemptLogger {
	return &StdoutAttemptLogger{}
}

// LogAttempt writes the attempt as a JSON line to os.Stdout
func (l *StdoutAttemptLogger) LogAttempt(attempt AttemptLog) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

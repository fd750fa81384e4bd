package event

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DeadLetterSchemaVersion versions the DeadLetterEntry line format
const DeadLetterSchemaVersion = "1.0"

// ErrDeadLetterClosed is returned by Write after Close
var ErrDeadLetterClosed = errors.New("dead-letter writer closed")

// DeadLetterEntry is one JSONL line: an event that could not be published
type DeadLetterEntry struct {
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	Event         Event     `json:"event"`
	Attempts      int       `json:"attempts"`
	LastError     string    `json:"last_error,omitempty"`
}

// DeadLetterWriter appends entries to a JSONL file
type DeadLetterWriter struct {
	mu     sync.Mutex
	file   *os.File
	closed bool
	now    func() time.Time
}

// NewDeadLetterWriter opens path for appending, creating it if needed
func NewDeadLetterWriter(path string) (*DeadLetterWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, DeadLetterFilePermissions)
	if err != nil {
		return nil, err
	}
	return &DeadLetterWriter{file: f, now: time.Now}, nil
}

// Write appends evt with its attempt count and the last publish error
func (w *DeadLetterWriter) Write(evt Event, attempts int, lastErr error) error {
	entry := DeadLetterEntry{
		SchemaVersion: DeadLetterSchemaVersion,
		Event:         evt,
		Attempts:      attempts,
	}
	if lastErr != nil {
		entry.LastError = lastErr.Error()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrDeadLetterClosed
	}
	entry.Timestamp = w.now().UTC()

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode dead-letter entry for %s: %w", evt.Type, err)
	}
	// Single write per entry
	_, err = w.file.Write(append(line, '\n'))
	return err
}

// Close closes the file; later writes fail with ErrDeadLetterClosed
func (w *DeadLetterWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// ReadDeadLetters parses a dead-letter log, skipping blank lines
func ReadDeadLetters(r io.Reader) ([]DeadLetterEntry, error) {
	var out []DeadLetterEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry DeadLetterEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return out, fmt.Errorf("dead-letter line %d: %w", line, err)
		}
		out = append(out, entry)
	}
	return out, scanner.Err()
}

// Package journal provides append-only logging of remote rename mutations.
// Each applied rename is recorded as an intent/confirmation pair, so an
// interrupted run leaves an unconfirmed entry behind rather than silence.
// The journal feeds the undo command, which replays confirmed renames in
// reverse over the same transport.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// TypeRename is the only mutation type the sanitizer records.
const TypeRename = "rename"

// Entry represents a single remote mutation. Paths are slash-separated
// remote paths, as used on the wire.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Type      string    `json:"type"`
	Source    string    `json:"src"`          // pre-rename remote path
	Dest      string    `json:"dst"`          // post-rename remote path
	Overwrite bool      `json:"ow,omitempty"` // move was issued with overwrite
	Success   bool      `json:"ok"`           // true once the move completed
}

// Writer appends journal entries to a JSONL file. Each Log call writes one
// JSON line and syncs so a crashed run loses at most the in-flight line.
//
// Writer is safe for concurrent use.
type Writer struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewWriter creates a journal writer at the given path, appending to an
// existing file.
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	return &Writer{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Log writes an entry and syncs to disk.
func (w *Writer) Log(entry Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := w.encoder.Encode(entry); err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}

	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}

	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.file.Close()
}

// Reader reads journal entries from a JSONL file.
type Reader struct {
	path string
}

// NewReader creates a journal reader for the given path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Entries reads all entries in order.
func (r *Reader) Entries() ([]Entry, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return entries, fmt.Errorf("decode journal line %d: %w", lineNum, err)
		}

		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("read journal: %w", err)
	}

	return entries, nil
}

// ConfirmedReverse returns the confirmed rename entries in reverse order.
// This is the undo order: children of a renamed directory were journaled
// after the directory itself, so reversing restores them while the parent
// still carries its new name.
func (r *Reader) ConfirmedReverse() ([]Entry, error) {
	entries, err := r.Entries()
	if err != nil {
		return nil, err
	}

	confirmed := entries[:0]
	for _, e := range entries {
		if e.Success && e.Type == TypeRename {
			confirmed = append(confirmed, e)
		}
	}

	for i, j := 0, len(confirmed)-1; i < j; i, j = i+1, j-1 {
		confirmed[i], confirmed[j] = confirmed[j], confirmed[i]
	}

	return confirmed, nil
}

// ErrPartialWrite is returned when the journal contains intent entries
// without a matching confirmation, indicating an interrupted run.
var ErrPartialWrite = errors.New("journal contains unconfirmed entries")

// Validate checks journal integrity. It returns ErrPartialWrite if any
// rename was journaled without a subsequent confirmation.
func (r *Reader) Validate() error {
	entries, err := r.Entries()
	if err != nil {
		return err
	}

	type opKey struct {
		src string
		dst string
	}

	pending := make(map[opKey]bool)

	for i := range entries {
		key := opKey{src: entries[i].Source, dst: entries[i].Dest}
		if entries[i].Success {
			delete(pending, key)
		} else {
			pending[key] = true
		}
	}

	if len(pending) > 0 {
		return ErrPartialWrite
	}

	return nil
}

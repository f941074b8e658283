// Package history keeps a JSON-file log of past validations. The log is
// capped and aged out on every append, so the file stays small without
// a separate cleanup pass. A busy log never blocks the caller: writes
// that cannot take the lock within a bounded wait report ErrUnavailable
// and reads fall back to empty results.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"validador/internal/timeutil"
	"validador/internal/validator"
)

// ErrUnavailable reports that the log lock could not be acquired within
// the bounded wait.
var ErrUnavailable = errors.New("history: log unavailable")

const (
	retention       = 40 * 24 * time.Hour
	maxEntries      = 200
	duplicateWindow = 5 * time.Minute

	readWait  = time.Second
	writeWait = 2 * time.Second
)

// Entry is one logged validation.
type Entry struct {
	At     time.Time `json:"at"`
	Times  string    `json:"times"`
	Result string    `json:"result"`
	Valid  bool      `json:"valid"`
	Linked bool      `json:"linked"`
}

// Format renders the entry the way the history listing shows it.
func (e Entry) Format() string {
	return fmt.Sprintf("[%s] %s\n%s", e.At.Format("02/01/2006 15:04"), e.Times, e.Result)
}

// Log is the file-backed validation history.
type Log struct {
	path     string
	logger   *zerolog.Logger
	cacheTTL time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	cached   []Entry
	cachedAt time.Time

	// pendingMain holds the weekday times of a Saturday-complement pair
	// until the linked Saturday validation arrives.
	pendingMain string
}

// New creates a log backed by the file at path. cacheTTL bounds how long
// the in-memory copy is trusted before re-reading the file; non-positive
// means 30 minutes.
func New(path string, cacheTTL time.Duration, logger *zerolog.Logger) *Log {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Minute
	}
	return &Log{path: path, logger: logger, cacheTTL: cacheTTL, now: time.Now}
}

// Append logs one validation outcome. A re-validation of the same times
// within the duplicate window replaces the earlier entry instead of
// stacking up.
func (l *Log) Append(verdict validator.Verdict, input string, linked bool) error {
	if !acquire(l.mu.TryLock, writeWait) {
		return ErrUnavailable
	}
	defer l.mu.Unlock()

	entries := l.load()

	key := timeutil.NormalizeKey(input)
	now := l.now()
	kept := entries[:0]
	for _, e := range entries {
		if timeutil.NormalizeKey(e.Times) == key && now.Sub(e.At) < duplicateWindow {
			continue
		}
		kept = append(kept, e)
	}

	kept = append(kept, Entry{
		At:     now,
		Times:  input,
		Result: resultWithCode(verdict),
		Valid:  verdict.Valid,
		Linked: linked,
	})

	kept = prune(kept, now)

	if err := l.save(kept); err != nil {
		return err
	}
	l.cached = kept
	l.cachedAt = now
	return nil
}

// AppendMain logs a weekday validation and remembers its times so a
// following Saturday validation can be linked to it.
func (l *Log) AppendMain(verdict validator.Verdict, input string) error {
	if err := l.Append(verdict, input, false); err != nil {
		return err
	}
	l.mu.Lock()
	l.pendingMain = input
	l.mu.Unlock()
	return nil
}

// AppendLinked logs a Saturday validation joined to the pending weekday
// times. Without a pending main it is a no-op.
func (l *Log) AppendLinked(verdict validator.Verdict, saturdayInput string) error {
	l.mu.Lock()
	main := l.pendingMain
	l.pendingMain = ""
	l.mu.Unlock()

	if main == "" {
		return nil
	}
	return l.Append(verdict, main+" + "+saturdayInput, true)
}

// All returns every logged entry formatted for display, newest first.
// An unavailable log reads as empty.
func (l *Log) All() []string {
	return format(l.entries())
}

// Recent returns the n newest entries formatted for display.
func (l *Log) Recent(n int) []string {
	all := format(l.entries())
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// Entries returns the raw log, newest first.
func (l *Log) Entries() []Entry {
	return l.entries()
}

// Clear deletes the log file and resets all state.
func (l *Log) Clear() error {
	if !acquire(l.mu.TryLock, writeWait) {
		return ErrUnavailable
	}
	defer l.mu.Unlock()

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("history: clear: %w", err)
	}
	l.cached = nil
	l.cachedAt = time.Time{}
	l.pendingMain = ""
	return nil
}

func (l *Log) entries() []Entry {
	if !acquire(l.mu.TryRLock, readWait) {
		if l.logger != nil {
			l.logger.Warn().Msg("history read timed out, returning empty")
		}
		return nil
	}
	if l.cached != nil && l.now().Sub(l.cachedAt) < l.cacheTTL {
		out := sorted(l.cached)
		l.mu.RUnlock()
		return out
	}
	l.mu.RUnlock()

	if !acquire(l.mu.TryLock, writeWait) {
		return nil
	}
	defer l.mu.Unlock()

	entries := l.load()
	l.cached = entries
	l.cachedAt = l.now()
	return sorted(entries)
}

// load reads the log file. A missing or empty file is an empty log; a
// corrupted file is set aside as a timestamped .bak and the log starts
// fresh. Caller holds the write lock.
func (l *Log) load() []Entry {
	data, err := os.ReadFile(l.path)
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		backup := fmt.Sprintf("%s.%s.bak", l.path, l.now().Format("20060102-150405"))
		if renameErr := os.Rename(l.path, backup); renameErr == nil {
			if l.logger != nil {
				l.logger.Warn().Str("backup", backup).Err(err).Msg("history file corrupted, moved aside")
			}
		}
		return nil
	}
	return entries
}

func (l *Log) save(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("history: create directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("history: encode: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("history: write: %w", err)
	}
	return nil
}

// prune drops entries older than the retention window and keeps only
// the newest maxEntries.
func prune(entries []Entry, now time.Time) []Entry {
	kept := entries[:0]
	for _, e := range entries {
		if now.Sub(e.At) <= retention {
			kept = append(kept, e)
		}
	}
	if len(kept) > maxEntries {
		kept = sorted(kept)[:maxEntries]
	}
	return kept
}

// resultWithCode ensures a verdict that resolved a code carries it in
// the stored result text.
func resultWithCode(v validator.Verdict) string {
	text := v.Message
	if v.Code == "" || strings.Contains(text, "(Código:") {
		return text
	}
	trimmed := strings.TrimLeft(text, "✅❌⚠️ ")
	return fmt.Sprintf("%s %s (Código: %s)", validator.GlyphSuccess, trimmed, v.Code)
}

func sorted(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out
}

func format(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Format())
	}
	return out
}

// acquire retries a try-lock until it succeeds or the wait elapses.
func acquire(try func() bool, wait time.Duration) bool {
	deadline := time.Now().Add(wait)
	for {
		if try() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}

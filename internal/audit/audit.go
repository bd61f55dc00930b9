// Package audit keeps the append-only action log. Entries are stored oldest
// first, one JSON object per line, and read back newest first.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/arsenal/internal/metrics"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/store"
)

// FileName is the audit log's name inside the data directory.
const FileName = "audit.log"

// Log is the audit log file.
type Log struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// Open prepares the audit log at path, creating its directory if needed.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	return &Log{path: path, now: time.Now}, nil
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Append writes one entry. A write failure is returned to the caller and also
// reported through slog, since the audit log itself cannot record it.
func (l *Log) Append(ctx context.Context, kind, actor, description string) error {
	if actor == "" {
		actor = model.SystemActor
	}
	entry := model.LogEntry{
		Timestamp:   l.now(),
		Kind:        kind,
		Actor:       actor,
		Description: description,
	}

	err := l.write(entry)
	if err != nil {
		metrics.AuditFailures.Inc()
		slog.ErrorContext(ctx, "failed to write audit entry",
			"kind", kind, "actor", actor, "description", description, "error", err)
		return err
	}
	metrics.AuditEntries.WithLabelValues(kind).Inc()
	return nil
}

func (l *Log) write(entry model.LogEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("writing audit log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing audit log: %w", err)
	}
	return nil
}

// ReadAll returns every entry, newest first. A missing file is an empty log.
// Lines that are neither JSON entries nor legacy text entries are skipped.
func (l *Log) ReadAll(ctx context.Context) ([]model.LogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.LogEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	var entries []model.LogEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		entry, ok := parseLine(line)
		if !ok {
			slog.WarnContext(ctx, "skipping unreadable audit line", "line", line)
			continue
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if entries == nil {
		entries = []model.LogEntry{}
	}
	return entries, nil
}

// CopyTo copies the log into dir while holding the write lock.
func (l *Log) CopyTo(dir string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := store.CopyFile(l.path, filepath.Join(dir, filepath.Base(l.path)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Filter keeps entries matching kind and actor; empty values match everything.
func Filter(entries []model.LogEntry, kind, actor string) []model.LogEntry {
	if kind == "" && actor == "" {
		return entries
	}
	out := make([]model.LogEntry, 0, len(entries))
	for _, e := range entries {
		if kind != "" && e.Kind != kind {
			continue
		}
		if actor != "" && e.Actor != actor {
			continue
		}
		out = append(out, e)
	}
	return out
}

// legacyLine matches "[date] [KIND] description" lines from the old text log.
var legacyLine = regexp.MustCompile(`^\[([^\]]*)\] \[([^\]]*)\] ?(.*)$`)

// legacyKinds maps the old Polish action names to action kinds.
var legacyKinds = map[string]string{
	"LOGOWANIE": model.ActionLogin,
	"DOSTAWA":   model.ActionDelivery,
	"EDYCJA":    model.ActionEdit,
	"USUNIĘCIE": model.ActionRemoval,
	"KOREKTA":   model.ActionAdjustment,
	"WYDANIE":   model.ActionIssue,
	"BŁĄD":      model.ActionError,
}

var legacyTimeLayouts = []string{
	"2.1.2006, 15:04:05",
	"02.01.2006, 15:04:05",
	"1/2/2006, 3:04:05 PM",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseLine(line string) (model.LogEntry, bool) {
	if strings.HasPrefix(line, "{") {
		var e model.LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return model.LogEntry{}, false
		}
		return e, true
	}

	m := legacyLine.FindStringSubmatch(line)
	if m == nil {
		return model.LogEntry{}, false
	}
	kind := m[2]
	if k, ok := legacyKinds[kind]; ok {
		kind = k
	}
	e := model.LogEntry{Kind: kind, Actor: model.SystemActor, Description: m[3]}
	for _, layout := range legacyTimeLayouts {
		if ts, err := time.ParseInLocation(layout, m[1], time.Local); err == nil {
			e.Timestamp = ts
			break
		}
	}
	return e, true
}

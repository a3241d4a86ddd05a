package memory

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	DefaultMaxEntries  = 5000
	DefaultKeepEntries = 1000
)

// FileLog stores entries as JSON lines. Once the file grows past maxEntries it
// is rewritten with the newest keepEntries.
type FileLog struct {
	path        string
	maxEntries  int
	keepEntries int

	mu    sync.Mutex
	count int // -1 until the file has been counted
}

func NewFileLog(path string, maxEntries, keepEntries int) *FileLog {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if keepEntries <= 0 || keepEntries > maxEntries {
		keepEntries = DefaultKeepEntries
		if keepEntries > maxEntries {
			keepEntries = maxEntries
		}
	}
	return &FileLog{path: path, maxEntries: maxEntries, keepEntries: keepEntries, count: -1}
}

func (l *FileLog) Append(_ context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count < 0 {
		lines, err := l.readLines()
		if err != nil {
			return err
		}
		l.count = len(lines)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	l.count++

	if l.count > l.maxEntries {
		return l.rotate()
	}
	return nil
}

func (l *FileLog) Recent(_ context.Context, n int) ([]Entry, error) {
	l.mu.Lock()
	lines, err := l.readLines()
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	out := make([]Entry, 0, len(lines))
	for _, ln := range lines {
		var e Entry
		if json.Unmarshal(ln, &e) != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// rotate keeps the newest keepEntries lines. Caller holds mu.
func (l *FileLog) rotate() error {
	lines, err := l.readLines()
	if err != nil {
		return err
	}
	if len(lines) > l.keepEntries {
		lines = lines[len(lines)-l.keepEntries:]
	}

	var buf bytes.Buffer
	for _, ln := range lines {
		buf.Write(ln)
		buf.WriteByte('\n')
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return err
	}
	l.count = len(lines)
	return nil
}

func (l *FileLog) readLines() ([][]byte, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines [][]byte
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		ln := bytes.TrimSpace(sc.Bytes())
		if len(ln) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), ln...))
	}
	return lines, sc.Err()
}

// Package audit keeps an append-only, hash-chained record of every command
// tree the shell evaluates.
package audit

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const genesisInput = "minish-genesis"

// Logger is an append-only, hash-chained audit log writer.
type Logger struct {
	mu       sync.Mutex
	fs       afero.Fs
	path     string
	seq      uint64
	prevHash string
}

// NewLogger opens or creates an audit log at the given path.
// It reads the last entry to resume the hash chain.
func NewLogger(fs afero.Fs, path string) (*Logger, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}

	l := &Logger{
		fs:       fs,
		path:     path,
		prevHash: genesisHash(),
	}

	if data, err := afero.ReadFile(fs, path); err == nil {
		if lines := splitLines(data); len(lines) > 0 {
			var last Entry
			if err := json.Unmarshal(lines[len(lines)-1], &last); err == nil {
				l.seq = last.Seq
				l.prevHash = last.Hash
			}
		}
	}

	return l, nil
}

// Log appends an entry for r.
func (l *Logger) Log(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Seq:      l.seq + 1,
		Time:     time.Now().UTC(),
		PrevHash: l.prevHash,
		Run:      r.Run,
		Source:   r.Source,
		Tree:     r.Tree,
		Verbs:    r.Verbs,
		Status:   r.Status,
		Exited:   r.Exited,
		Duration: float64(r.Duration.Microseconds()) / 1000.0,
		Cwd:      r.Cwd,
	}
	if r.Err != nil {
		entry.Error = r.Err.Error()
	}
	entry.Hash = computeHash(entry)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	data = append(data, '\n')

	f, err := l.fs.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}

	// The chain only advances once the entry is on disk.
	l.seq = entry.Seq
	l.prevHash = entry.Hash
	return nil
}

// Path returns the audit log file path.
func (l *Logger) Path() string {
	return l.path
}

func genesisHash() string {
	h := sha256.Sum256([]byte(genesisInput))
	return fmt.Sprintf("%x", h)
}

func computeHash(e Entry) string {
	e.Hash = ""
	data, _ := json.Marshal(e)
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h)
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// logRecord is the on-disk line shape: a JSON object with exactly "op"
// and "params", one per line, CRLF-terminated.
type logRecord struct {
	Op     string `json:"op"`
	Params []any  `json:"params"`
}

// AppendLog is the durable on-disk mutation log. It opens its file
// lazily on first write (grounded on original_source/libs/Storage.py's
// AppendLogStorage, which opens in append mode the first time save() is
// called) and replays it line-by-line on Load.
type AppendLog struct {
	path   string
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer

	suppressed atomic.Bool
	logger     *zap.Logger
}

// NewAppendLog constructs an append-log sink writing to path. The file is
// not opened until the first Record call.
func NewAppendLog(path string, logger *zap.Logger) *AppendLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppendLog{path: path, logger: logger}
}

// Suppress implements Sink.
func (a *AppendLog) Suppress(suppress bool) {
	a.suppressed.Store(suppress)
}

// Load replays path line-by-line against exec, in file order. A missing
// file means an empty graph and is not an error.
func (a *AppendLog) Load(exec Executor) error {
	f, err := os.Open(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("append log: open %s: %w", a.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec logRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("append log: %s:%d: corrupt record: %w", a.path, line, err)
		}
		if err := exec.ExecuteReplay(rec.Op, rec.Params); err != nil {
			a.logger.Warn("append log replay rejected a previously-accepted command",
				zap.String("op", rec.Op), zap.Int("line", line), zap.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("append log: %s: read: %w", a.path, err)
	}
	return nil
}

// Record appends one JSON line to the log, opening the file on first
// write. Suppressed during replay.
func (a *AppendLog) Record(verb string, params []any) error {
	if a.suppressed.Load() {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("append log: open %s: %w", a.path, err)
		}
		a.file = f
		a.writer = bufio.NewWriter(f)
	}

	data, err := json.Marshal(logRecord{Op: verb, Params: params})
	if err != nil {
		return fmt.Errorf("append log: marshal %s: %w", verb, err)
	}
	if _, err := a.writer.Write(data); err != nil {
		return err
	}
	if _, err := a.writer.WriteString("\r\n"); err != nil {
		return err
	}
	return a.writer.Flush()
}

// Close flushes and closes the underlying file, if one was opened.
func (a *AppendLog) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}
	if err := a.writer.Flush(); err != nil {
		return err
	}
	return a.file.Close()
}

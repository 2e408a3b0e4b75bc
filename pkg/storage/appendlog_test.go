package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	calls [][2]any
}

func (r *recordingExecutor) ExecuteReplay(verb string, params []any) error {
	r.calls = append(r.calls, [2]any{verb, params})
	return nil
}

func TestAppendLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.db")

	log := NewAppendLog(path, nil)
	require.NoError(t, log.Record("CREATE", []any{float64(1)}))
	require.NoError(t, log.Record("SET", []any{float64(1), "name", "alice"}))
	require.NoError(t, log.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\r\n")
	assert.Contains(t, string(raw), `"op":"CREATE"`)

	exec := &recordingExecutor{}
	require.NoError(t, log.Load(exec))
	require.Len(t, exec.calls, 2)
	assert.Equal(t, "CREATE", exec.calls[0][0])
	assert.Equal(t, "SET", exec.calls[1][0])
}

func TestAppendLogMissingFileIsNotError(t *testing.T) {
	dir := t.TempDir()
	log := NewAppendLog(filepath.Join(dir, "missing.db"), nil)
	exec := &recordingExecutor{}
	require.NoError(t, log.Load(exec))
	assert.Empty(t, exec.calls)
}

func TestAppendLogSuppressedRecordIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.db")
	log := NewAppendLog(path, nil)
	log.Suppress(true)
	require.NoError(t, log.Record("CREATE", []any{float64(1)}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "suppressed record must not open the file")
}

type fakeSink struct {
	name   string
	order  *[]string
	record func(verb string, params []any) error
}

func (f *fakeSink) Suppress(bool)    {}
func (f *fakeSink) Load(Executor) error { return nil }
func (f *fakeSink) Record(verb string, params []any) error {
	*f.order = append(*f.order, f.name)
	if f.record != nil {
		return f.record(verb, params)
	}
	return nil
}

func TestMultiSinkRecordsInOrder(t *testing.T) {
	var order []string
	a := &fakeSink{name: "a", order: &order}
	b := &fakeSink{name: "b", order: &order}

	m := NewMultiSink(a, b)
	require.NoError(t, m.Record("CREATE", []any{float64(1)}))

	assert.Equal(t, []string{"a", "b"}, order)
}

package resp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCommand(t *testing.T) {
	raw := "*3\r\n$6\r\nCREATE\r\n$1\r\n1\r\n$0\r\n\r\n"
	r := NewReader(strings.NewReader(raw))
	cmd, err := r.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE", "1", ""}, cmd)
}

func TestReadCommandWithIntegerElement(t *testing.T) {
	raw := "*2\r\n$3\r\nGET\r\n:26\r\n"
	r := NewReader(strings.NewReader(raw))
	cmd, err := r.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, []string{"GET", "26"}, cmd)
}

func TestReadCommandEOF(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	_, err := r.ReadCommand()
	require.Error(t, err)
}

func TestWriteSimpleStringReply(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteReply("OK"))
	assert.Equal(t, "+OK\r\n", buf.String())
}

func TestWriteIntegerReply(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteReply(3))
	assert.Equal(t, ":3\r\n", buf.String())
}

func TestWriteErrorReply(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteError("boom"))
	assert.Equal(t, "-boom\r\n", buf.String())
}

func TestWriteMapReplyIsFlatAlternatingArray(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteReply(map[string]any{"id": 10, "name": "alice"}))

	// keys sorted: id, name
	want := "*4\r\n$2\r\nid\r\n:10\r\n$4\r\nname\r\n$5\r\nalice\r\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteArrayOfMapsReply(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	edges := []any{
		map[string]any{"source": 1, "target": 2, "type": "knows", "weight": "w1"},
	}
	require.NoError(t, w.WriteReply(edges))
	assert.Contains(t, buf.String(), "*1\r\n*8\r\n")
}

func TestRoundTripListReply(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteReply([]any{1, 2, 3}))
	assert.Equal(t, "*3\r\n:1\r\n:2\r\n:3\r\n", buf.String())
}

package server

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgronhol/h3-tritium/pkg/dispatch"
	"github.com/mgronhol/h3-tritium/pkg/graph"
	"github.com/mgronhol/h3-tritium/pkg/resp"
)

func startTestServer(t *testing.T) net.Addr {
	t.Helper()
	g := graph.New()
	d := dispatch.New(g, nil)
	s := New("127.0.0.1:0", d, g, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s.listener = ln

	go func() { _ = s.serve() }()
	t.Cleanup(func() { _ = s.Close() })

	return ln.Addr()
}

func TestServerRoundTripsCreateAndGet(t *testing.T) {
	addr := startTestServer(t)

	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	w := resp.NewWriter(conn)
	r := resp.NewReader(conn)

	require.NoError(t, w.WriteReply([]any{"CREATE", "1"}))
	reply, err := r.ReadReply()
	require.NoError(t, err)
	assert.Equal(t, "OK", reply)

	require.NoError(t, w.WriteReply([]any{"SET", "1", "name", "alice"}))
	reply, err = r.ReadReply()
	require.NoError(t, err)
	assert.Equal(t, "OK", reply)

	require.NoError(t, w.WriteReply([]any{"GET", "1"}))
	reply, err = r.ReadReply()
	require.NoError(t, err)
	got := reply.([]any)
	assert.Contains(t, got, "id")
}

func TestServerReportsDispatchErrorsAsWireErrors(t *testing.T) {
	addr := startTestServer(t)

	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	w := resp.NewWriter(conn)
	r := resp.NewReader(conn)

	require.NoError(t, w.WriteReply([]any{"GET", "99"}))
	_, err = r.ReadReply()
	require.Error(t, err)
	wireErr, ok := err.(*resp.WireError)
	require.True(t, ok)
	assert.Equal(t, "Node (99) not in graph", wireErr.Message)
}

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectAndEdgesSymmetric(t *testing.T) {
	g := New()
	g.Create(1)
	g.Create(2)

	_, err := g.Connect(1, 2, "knows", NewString("w1"))
	require.NoError(t, err)

	fwd, err := g.ForwardEdges(1)
	require.NoError(t, err)
	require.Len(t, fwd, 1)
	assert.Equal(t, NodeID(2), fwd[0].Target)
	assert.Equal(t, "knows", fwd[0].Type)

	bwd, err := g.BackwardEdges(1)
	require.NoError(t, err)
	assert.Empty(t, bwd)

	fwd2, _ := g.ForwardEdges(2)
	assert.Empty(t, fwd2)
	bwd2, _ := g.BackwardEdges(2)
	require.Len(t, bwd2, 1)
	assert.Equal(t, NodeID(1), bwd2[0].Source)
}

func TestRemoveNodeCascadesEdges(t *testing.T) {
	g := New()
	g.Create(1)
	g.Create(2)
	_, err := g.Connect(1, 2, "knows", NewString("w1"))
	require.NoError(t, err)

	require.NoError(t, g.RemoveNode(2))

	fwd, err := g.ForwardEdges(1)
	require.NoError(t, err)
	assert.Empty(t, fwd)
}

func TestPropertiesSetGetUnset(t *testing.T) {
	g := New()
	g.Create(10)
	require.NoError(t, g.SetProperty(10, "name", NewString("alice")))
	require.NoError(t, g.SetProperty(10, "age", NewString("30")))

	view, err := g.GetNode(10)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Properties["name"].String())
	assert.Equal(t, "30", view.Properties["age"].String())

	require.NoError(t, g.RemoveProperty(10, "age"))
	view, err = g.GetNode(10)
	require.NoError(t, err)
	_, hasAge := view.Properties["age"]
	assert.False(t, hasAge)
	assert.Equal(t, "alice", view.Properties["name"].String())
}

func TestConnectUnknownEndpointFails(t *testing.T) {
	g := New()
	g.Create(1)

	_, err := g.Connect(1, 2, "knows", NewString(""))
	require.Error(t, err)
	assert.Equal(t, "Target node not in graph", err.Error())

	_, err = g.Connect(2, 1, "knows", NewString(""))
	require.Error(t, err)
	assert.Equal(t, "Source node not in graph", err.Error())

	fwd, _ := g.ForwardEdges(1)
	assert.Empty(t, fwd, "failed connect must not mutate the graph")
}

func TestConnectDuplicateOverwritesWeight(t *testing.T) {
	g := New()
	g.Create(1)
	g.Create(2)

	_, err := g.Connect(1, 2, "knows", NewString("w1"))
	require.NoError(t, err)
	_, err = g.Connect(1, 2, "knows", NewString("w2"))
	require.NoError(t, err)

	fwd, _ := g.ForwardEdges(1)
	require.Len(t, fwd, 1)
	assert.Equal(t, "w2", fwd[0].Weight.String())
}

func TestDisconnectEchoesEdgeEvenWhenAbsent(t *testing.T) {
	g := New()
	g.Create(1)
	g.Create(2)
	_, err := g.Connect(1, 2, "knows", NewString("w"))
	require.NoError(t, err)

	view, err := g.Disconnect(1, 2, "knows")
	require.NoError(t, err)
	assert.Equal(t, NodeID(1), view.Source)

	// second disconnect: no matching edge, still not an error
	view2, err := g.Disconnect(1, 2, "knows")
	require.NoError(t, err)
	assert.Equal(t, NodeID(1), view2.Source)
}

func TestInterningStability(t *testing.T) {
	g := New()
	g.Create(1)
	g.Create(2)
	g.Create(3)

	_, err := g.Connect(1, 2, "knows", NewString(""))
	require.NoError(t, err)
	_, err = g.Connect(1, 3, "knows", NewString(""))
	require.NoError(t, err)

	fwd, _ := g.ForwardEdges(1)
	for _, e := range fwd {
		assert.Equal(t, "knows", e.Type)
	}
}

func TestRemovePropertyAbsentIsNoop(t *testing.T) {
	g := New()
	g.Create(1)
	assert.NoError(t, g.RemoveProperty(1, "nope"))
}

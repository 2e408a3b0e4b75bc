// Package graph implements the in-memory labeled property multigraph: the
// node/edge/property store. It holds no locks of its own — the dispatcher
// serializes access with a single global mutex, so the store can stay a
// plain, deterministic data structure.
package graph

import "fmt"

// NodeID is the client-provided 64-bit node identifier. Zero is never a
// valid id.
type NodeID int64

// propEntry is one (key, value) property slot. Properties are a list, not
// a map, preserving first-write insertion order while enforcing per-key
// uniqueness by linear scan — node degree and property count are assumed
// modest, so a linear scan stays cheap.
type propEntry struct {
	key   uint32
	value Value
}

// Edge is a directed, typed, weighted connection between two nodes.
type Edge struct {
	Source NodeID
	Target NodeID
	Type   uint32
	Weight Value
}

// Node is a vertex: an id, an ordered property list, and the two
// adjacency lists that make traversal symmetric.
type Node struct {
	ID       NodeID
	props    []propEntry
	Forward  []Edge
	Backward []Edge
}

// EdgeView is an Edge with its TypeID resolved back to the external name,
// the shape GET/EDGES/CONNECT/DISCONNECT echo to clients.
type EdgeView struct {
	Source NodeID
	Target NodeID
	Type   string
	Weight Value
}

// NodeView is a Node materialized for client consumption: properties
// keyed by name instead of KeyID.
type NodeView struct {
	ID         NodeID
	Properties map[string]Value
}

// Graph is one of the 16 graphs a server holds; only graph 0 is reachable
// from the current command surface, but all 16 exist so that a future
// multi-graph client (or a replay of a log written against a different
// index) has somewhere to land.
type Graph struct {
	nodes map[NodeID]*Node
	types *internTable
	props *internTable
}

// New constructs one empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[NodeID]*Node),
		types: newInternTable(),
		props: newInternTable(),
	}
}

// DB holds the 16 graphs a server process keeps.
type DB struct {
	Graphs [16]*Graph
}

// NewDB constructs a fresh DB with all 16 graphs initialized.
func NewDB() *DB {
	db := &DB{}
	for i := range db.Graphs {
		db.Graphs[i] = New()
	}
	return db
}

// Create installs an empty node at id, or re-initializes it to empty if
// it already exists: CREATE on a live node silently drops its properties
// and edges rather than erroring or no-op'ing. Any incident edges on
// remote endpoints are left dangling — callers who want a clean slate
// should DELETE before CREATE.
func (g *Graph) Create(id NodeID) {
	g.nodes[id] = &Node{ID: id}
}

// Exists reports whether id is present.
func (g *Graph) Exists(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Connect installs a typed, weighted edge from source to target,
// interning typeName on first use. Validation precedes mutation: both
// endpoints must already exist, checked before the type intern has any
// observable effect and before either adjacency list is touched. An edge
// with identical (source, target, type) has its weight overwritten in
// place rather than duplicated.
func (g *Graph) Connect(source, target NodeID, typeName string, weight Value) (EdgeView, error) {
	if !g.Exists(source) {
		return EdgeView{}, fmt.Errorf("Source node not in graph")
	}
	if !g.Exists(target) {
		return EdgeView{}, fmt.Errorf("Target node not in graph")
	}

	typeID := g.types.intern(typeName)
	edge := Edge{Source: source, Target: target, Type: typeID, Weight: weight}

	addOrReplaceForward(g.nodes[source], edge)
	addOrReplaceBackward(g.nodes[target], edge)

	return EdgeView{Source: source, Target: target, Type: typeName, Weight: weight}, nil
}

// Disconnect removes the edge identified by (source, target, typeName);
// weight is ignored for matching purposes. The reply echoes the edge
// shape even when no match existed — absence is not an error. The
// echoed weight is always the zero Value, matching the original
// Hawthorn.disconnect, which never looks the removed edge's real weight
// up.
func (g *Graph) Disconnect(source, target NodeID, typeName string) (EdgeView, error) {
	if !g.Exists(source) {
		return EdgeView{}, fmt.Errorf("Source node not in graph")
	}
	if !g.Exists(target) {
		return EdgeView{}, fmt.Errorf("Target node not in graph")
	}
	typeID, ok := g.types.lookup(typeName)
	if !ok {
		return EdgeView{}, fmt.Errorf("Edge type (%s) not defined", typeName)
	}

	removeForward(g.nodes[source], source, target, typeID)
	removeBackward(g.nodes[target], source, target, typeID)

	return EdgeView{Source: source, Target: target, Type: typeName, Weight: Value{}}, nil
}

// RemoveNode detaches every incident edge on its remote endpoint, then
// erases the node. Forward and backward lists are snapshotted before
// iterating since Disconnect mutates both lists in place.
func (g *Graph) RemoveNode(id NodeID) error {
	node, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("Node (%d) not in graph", id)
	}

	forward := append([]Edge(nil), node.Forward...)
	backward := append([]Edge(nil), node.Backward...)

	for _, e := range forward {
		typeName, _ := g.types.name(e.Type)
		_, _ = g.Disconnect(e.Source, e.Target, typeName)
	}
	for _, e := range backward {
		typeName, _ := g.types.name(e.Type)
		_, _ = g.Disconnect(e.Source, e.Target, typeName)
	}

	delete(g.nodes, id)
	return nil
}

// SetProperty interns keyName on first use and overwrites the existing
// entry if present, appending otherwise.
func (g *Graph) SetProperty(id NodeID, keyName string, value Value) error {
	node, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("Node (%d) not in graph", id)
	}
	keyID := g.props.intern(keyName)

	for i := range node.props {
		if node.props[i].key == keyID {
			node.props[i].value = value
			return nil
		}
	}
	node.props = append(node.props, propEntry{key: keyID, value: value})
	return nil
}

// RemoveProperty erases the first entry whose key matches keyName.
// Absence is not an error: the original removal loop this was grounded
// on was unreachable dead code, so the semantics here are defined fresh.
func (g *Graph) RemoveProperty(id NodeID, keyName string) error {
	node, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("Node (%d) not in graph", id)
	}
	keyID, ok := g.props.lookup(keyName)
	if !ok {
		return nil
	}
	for i := range node.props {
		if node.props[i].key == keyID {
			node.props = append(node.props[:i], node.props[i+1:]...)
			return nil
		}
	}
	return nil
}

// GetNode materializes the interned property list back into a
// name-keyed map.
func (g *Graph) GetNode(id NodeID) (NodeView, error) {
	node, ok := g.nodes[id]
	if !ok {
		return NodeView{}, fmt.Errorf("Node (%d) not in graph", id)
	}
	props := make(map[string]Value, len(node.props))
	for _, entry := range node.props {
		name, _ := g.props.name(entry.key)
		props[name] = entry.value
	}
	return NodeView{ID: id, Properties: props}, nil
}

// ForwardEdges returns node id's outgoing edges with TypeId translated
// back to the external type name, in insertion order.
func (g *Graph) ForwardEdges(id NodeID) ([]EdgeView, error) {
	node, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("Node (%d) not in graph", id)
	}
	return g.viewEdges(node.Forward), nil
}

// BackwardEdges returns node id's incoming edges with TypeId translated
// back to the external type name, in insertion order.
func (g *Graph) BackwardEdges(id NodeID) ([]EdgeView, error) {
	node, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("Node (%d) not in graph", id)
	}
	return g.viewEdges(node.Backward), nil
}

func (g *Graph) viewEdges(edges []Edge) []EdgeView {
	out := make([]EdgeView, 0, len(edges))
	for _, e := range edges {
		typeName, _ := g.types.name(e.Type)
		out = append(out, EdgeView{Source: e.Source, Target: e.Target, Type: typeName, Weight: e.Weight})
	}
	return out
}

// NodeIDs returns every node id currently in the graph, in map iteration
// order. Used by the query engine's FIND, which must scan the whole node
// table; FIND sorts the ids ascending before scanning, so its result
// order does not depend on Go's randomized map order.
func (g *Graph) NodeIDs() []NodeID {
	out := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	return out
}

func addOrReplaceForward(node *Node, edge Edge) {
	for i := range node.Forward {
		if sameEndpoints(node.Forward[i], edge) {
			node.Forward[i] = edge
			return
		}
	}
	node.Forward = append(node.Forward, edge)
}

func addOrReplaceBackward(node *Node, edge Edge) {
	for i := range node.Backward {
		if sameEndpoints(node.Backward[i], edge) {
			node.Backward[i] = edge
			return
		}
	}
	node.Backward = append(node.Backward, edge)
}

func sameEndpoints(a, b Edge) bool {
	return a.Source == b.Source && a.Target == b.Target && a.Type == b.Type
}

func removeForward(node *Node, source, target NodeID, typeID uint32) {
	for i := range node.Forward {
		e := node.Forward[i]
		if e.Source == source && e.Target == target && e.Type == typeID {
			node.Forward = append(node.Forward[:i], node.Forward[i+1:]...)
			return
		}
	}
}

func removeBackward(node *Node, source, target NodeID, typeID uint32) {
	for i := range node.Backward {
		e := node.Backward[i]
		if e.Source == source && e.Target == target && e.Type == typeID {
			node.Backward = append(node.Backward[:i], node.Backward[i+1:]...)
			return
		}
	}
}

// Package query implements the per-session query engine: named result
// sets over one Graph, composed with traversal and set-algebra operations.
// One Engine is bound to exactly one session and one Graph — nothing here
// is shared across connections.
package query

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/mgronhol/h3-tritium/pkg/graph"
)

// predicates implements the two comparison operators the engine supports.
var predicates = map[string]func(a, b graph.Value) bool{
	"=":  func(a, b graph.Value) bool { return a.Equal(b) },
	"!=": func(a, b graph.Value) bool { return !a.Equal(b) },
}

// Engine holds one session's named result sets and fetch history, bound
// to one Graph.
type Engine struct {
	graph   *graph.Graph
	sets    map[string][]graph.NodeID
	results [][]graph.NodeID
}

// New binds a fresh query engine to g.
func New(g *graph.Graph) *Engine {
	return &Engine{
		graph: g,
		sets:  make(map[string][]graph.NodeID),
	}
}

func notFound(setName string) error {
	return fmt.Errorf("Queryset (%s) not found", setName)
}

// Start assigns setName the full given node-id list. Duplicates are
// permitted and preserved.
func (e *Engine) Start(setName string, ids []graph.NodeID) int {
	cp := append([]graph.NodeID(nil), ids...)
	e.sets[setName] = cp
	return len(cp)
}

// Forward walks every node in sourceSet's forward edges, keeping only
// those whose type name is among typeNames, and collects target node ids
// into targetSet in traversal order. Duplicates are preserved.
func (e *Engine) Forward(sourceSet, targetSet string, typeNames []string) (int, error) {
	nodes, ok := e.sets[sourceSet]
	if !ok {
		return 0, notFound(sourceSet)
	}
	wanted := toSet(typeNames)

	var result []graph.NodeID
	for _, id := range nodes {
		edges, err := e.graph.ForwardEdges(id)
		if err != nil {
			continue
		}
		for _, edge := range edges {
			if wanted[edge.Type] {
				result = append(result, edge.Target)
			}
		}
	}
	e.sets[targetSet] = result
	return len(result), nil
}

// Backward is Forward's mirror image over backward edges.
func (e *Engine) Backward(sourceSet, targetSet string, typeNames []string) (int, error) {
	nodes, ok := e.sets[sourceSet]
	if !ok {
		return 0, notFound(sourceSet)
	}
	wanted := toSet(typeNames)

	var result []graph.NodeID
	for _, id := range nodes {
		edges, err := e.graph.BackwardEdges(id)
		if err != nil {
			continue
		}
		for _, edge := range edges {
			if wanted[edge.Type] {
				result = append(result, edge.Source)
			}
		}
	}
	e.sets[targetSet] = result
	return len(result), nil
}

// Filter materializes each node in sourceSet and keeps the ones whose
// key property satisfies predicate(value, operand) under operator.
func (e *Engine) Filter(sourceSet, targetSet, key string, operand graph.Value, operator string) (int, error) {
	nodes, ok := e.sets[sourceSet]
	if !ok {
		return 0, notFound(sourceSet)
	}
	predicate, ok := predicates[operator]
	if !ok {
		return 0, fmt.Errorf("Operator (%s) is not defined", operator)
	}

	var result []graph.NodeID
	for _, id := range nodes {
		view, err := e.graph.GetNode(id)
		if err != nil {
			continue
		}
		value, ok := view.Properties[key]
		if !ok {
			continue
		}
		if predicate(value, operand) {
			result = append(result, id)
		}
	}
	e.sets[targetSet] = result
	return len(result), nil
}

// Find scans every node in the bound graph. If key is present on a node,
// the predicate runs against its value; otherwise, if key is the literal
// "id", the predicate runs against the lowercase hex rendering of the
// node id (no "0x" prefix, no zero padding).
func (e *Engine) Find(targetSet, key string, operand graph.Value, operator string) (int, error) {
	predicate, ok := predicates[operator]
	if !ok {
		return 0, fmt.Errorf("Operator (%s) is not defined", operator)
	}

	ids := e.graph.NodeIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []graph.NodeID
	for _, id := range ids {
		view, err := e.graph.GetNode(id)
		if err != nil {
			continue
		}
		if value, ok := view.Properties[key]; ok {
			if predicate(value, operand) {
				result = append(result, id)
			}
			continue
		}
		if key == "id" {
			hex := strconv.FormatInt(int64(id), 16)
			if predicate(graph.NewString(hex), operand) {
				result = append(result, id)
			}
		}
	}
	e.sets[targetSet] = result
	return len(result), nil
}

// Unique deduplicates sourceSet while preserving first-occurrence order.
func (e *Engine) Unique(sourceSet, targetSet string) (int, error) {
	nodes, ok := e.sets[sourceSet]
	if !ok {
		return 0, notFound(sourceSet)
	}
	seen := make(map[graph.NodeID]bool, len(nodes))
	var result []graph.NodeID
	for _, id := range nodes {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	e.sets[targetSet] = result
	return len(result), nil
}

// Append concatenates sourceA then sourceB into targetSet (duplicates
// retained; cardinality is |A|+|B|).
func (e *Engine) Append(sourceA, sourceB, targetSet string) (int, error) {
	a, ok := e.sets[sourceA]
	if !ok {
		return 0, notFound(sourceA)
	}
	b, ok := e.sets[sourceB]
	if !ok {
		return 0, notFound(sourceB)
	}
	result := make([]graph.NodeID, 0, len(a)+len(b))
	result = append(result, a...)
	result = append(result, b...)
	e.sets[targetSet] = result
	return len(result), nil
}

// Union is standard set union. Result order is first-occurrence from
// sourceA then sourceB, which is commutative and associative under set
// equality while staying deterministic for a given pair of
// inputs.
func (e *Engine) Union(sourceA, sourceB, targetSet string) (int, error) {
	a, ok := e.sets[sourceA]
	if !ok {
		return 0, notFound(sourceA)
	}
	b, ok := e.sets[sourceB]
	if !ok {
		return 0, notFound(sourceB)
	}
	seen := make(map[graph.NodeID]bool, len(a)+len(b))
	var result []graph.NodeID
	for _, id := range a {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	for _, id := range b {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	e.sets[targetSet] = result
	return len(result), nil
}

// Intersection keeps ids present in both sourceA and sourceB, in
// sourceA's first-occurrence order.
func (e *Engine) Intersection(sourceA, sourceB, targetSet string) (int, error) {
	a, ok := e.sets[sourceA]
	if !ok {
		return 0, notFound(sourceA)
	}
	b, ok := e.sets[sourceB]
	if !ok {
		return 0, notFound(sourceB)
	}
	inB := toNodeSet(b)
	seen := make(map[graph.NodeID]bool, len(a))
	var result []graph.NodeID
	for _, id := range a {
		if inB[id] && !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	e.sets[targetSet] = result
	return len(result), nil
}

// Difference keeps ids present in sourceA but absent from sourceB, in
// sourceA's first-occurrence order. Difference(A, A) is always empty.
func (e *Engine) Difference(sourceA, sourceB, targetSet string) (int, error) {
	a, ok := e.sets[sourceA]
	if !ok {
		return 0, notFound(sourceA)
	}
	b, ok := e.sets[sourceB]
	if !ok {
		return 0, notFound(sourceB)
	}
	inB := toNodeSet(b)
	seen := make(map[graph.NodeID]bool, len(a))
	var result []graph.NodeID
	for _, id := range a {
		if !inB[id] && !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	e.sets[targetSet] = result
	return len(result), nil
}

// Fetch appends sourceSet's current contents to the session's fetch
// history and returns that content.
func (e *Engine) Fetch(sourceSet string) ([]graph.NodeID, error) {
	nodes, ok := e.sets[sourceSet]
	if !ok {
		return nil, notFound(sourceSet)
	}
	cp := append([]graph.NodeID(nil), nodes...)
	e.results = append(e.results, cp)
	return cp, nil
}

// Clear removes sourceSet from the session's set map.
func (e *Engine) Clear(sourceSet string) error {
	if _, ok := e.sets[sourceSet]; !ok {
		return notFound(sourceSet)
	}
	delete(e.sets, sourceSet)
	return nil
}

func toSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

func toNodeSet(ids []graph.NodeID) map[graph.NodeID]bool {
	out := make(map[graph.NodeID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

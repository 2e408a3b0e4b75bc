// Package dispatch implements the command dispatcher: it parses one
// already-tokenized command, checks its arity and node-id parameters,
// routes it to the graph store or the per-session query engine, and
// shapes the reply the wire codec will send back. Only the six mutation
// verbs (CREATE, DELETE, SET, UNSET, CONNECT, DISCONNECT) are ever handed
// to the storage sink; query verbs never record.
package dispatch

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/mgronhol/h3-tritium/pkg/graph"
	"github.com/mgronhol/h3-tritium/pkg/query"
	"github.com/mgronhol/h3-tritium/pkg/storage"
)

// Session is one connection's private state: a query engine bound to the
// dispatcher's graph, so named result sets never leak between clients.
type Session struct {
	engine *query.Engine
}

// NewSession binds a fresh per-connection Session to g.
func NewSession(g *graph.Graph) *Session {
	return &Session{engine: query.New(g)}
}

// verbSpec bounds how many parameters a verb accepts. max of -1 means
// unbounded (the trailing parameter is itself a list: node ids on START,
// type names on FORWARD/BACKWARD).
type verbSpec struct {
	min      int
	max      int
	mutating bool
}

var verbTable = map[string]verbSpec{
	"CREATE":       {1, 1, true},
	"DELETE":       {1, 1, true},
	"SET":          {3, 3, true},
	"UNSET":        {2, 2, true},
	"CONNECT":      {4, 4, true},
	"DISCONNECT":   {3, 3, true},
	"GET":          {1, 1, false},
	"EDGES":        {1, 1, false},
	"FETCH":        {1, 1, false},
	"CLEAR":        {1, 1, false},
	"START":        {2, -1, false},
	"FIND":         {4, 4, false},
	"FORWARD":      {3, -1, false},
	"BACKWARD":     {3, -1, false},
	"FILTER":       {5, 5, false},
	"APPEND":       {3, 3, false},
	"UNION":        {3, 3, false},
	"INTERSECTION": {3, 3, false},
	"DIFFERENCE":   {3, 3, false},
}

// Dispatcher owns the graph and the sink every accepted mutation records
// to. One mutex guards the whole command path: this is the single
// global lock baseline, with replication's own per-peer queueing moving
// the slow part (peer I/O) off this lock entirely.
type Dispatcher struct {
	mu    sync.Mutex
	graph *graph.Graph
	sink  storage.Sink
}

// New builds a Dispatcher over g, recording accepted mutations to sink.
// A nil sink is legal and means mutations are never persisted or
// replicated — useful for tests that only care about in-memory state.
func New(g *graph.Graph, sink storage.Sink) *Dispatcher {
	return &Dispatcher{graph: g, sink: sink}
}

// Dispatch parses and executes one command line (verb followed by its
// parameters, already split into tokens by the wire codec) against
// session's state, returning the shaped reply or an error whose message
// is exactly what should go back over the wire as a RESP error.
func (d *Dispatcher) Dispatch(session *Session, args []string) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("Unknown command ''")
	}
	verb := args[0]
	params := args[1:]

	vs, ok := verbTable[verb]
	if !ok {
		return nil, fmt.Errorf("Unknown command '%s'", verb)
	}
	if len(params) < vs.min || (vs.max >= 0 && len(params) > vs.max) {
		return nil, fmt.Errorf("Invalid parameter count (got %d), should be %d", len(params), vs.min)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	reply, err := d.execute(session, verb, params)
	if err != nil {
		return nil, err
	}
	if vs.mutating && d.sink != nil {
		if err := d.sink.Record(verb, toAnySlice(params)); err != nil {
			return nil, err
		}
	}
	return reply, nil
}

// ExecuteReplay applies one already-validated mutation read back from the
// append log, bypassing arity/record bookkeeping: the command was valid
// the first time it was accepted, and replay must not re-append it to
// whatever sink is attached (ExecuteReplay never calls Record; the caller
// of storage.AppendLog.Load additionally wraps the whole replay in
// Suppress(true)). It satisfies storage.Executor.
func (d *Dispatcher) ExecuteReplay(verb string, params []any) error {
	strParams := make([]string, len(params))
	for i, p := range params {
		s, ok := p.(string)
		if !ok {
			return fmt.Errorf("append log: %s: param %d is %T, want string", verb, i, p)
		}
		strParams[i] = s
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	replaySession := &Session{engine: query.New(d.graph)}
	_, err := d.execute(replaySession, verb, strParams)
	return err
}

// execute routes an already-arity-checked command. Caller holds d.mu.
func (d *Dispatcher) execute(session *Session, verb string, params []string) (any, error) {
	switch verb {
	case "CREATE":
		id, err := parseNodeID(params[0])
		if err != nil {
			return nil, err
		}
		d.graph.Create(id)
		return "OK", nil

	case "DELETE":
		id, err := parseNodeID(params[0])
		if err != nil {
			return nil, err
		}
		if err := d.graph.RemoveNode(id); err != nil {
			return nil, err
		}
		return "OK", nil

	case "SET":
		id, err := parseNodeID(params[0])
		if err != nil {
			return nil, err
		}
		if err := d.graph.SetProperty(id, params[1], graph.NewString(params[2])); err != nil {
			return nil, err
		}
		return "OK", nil

	case "UNSET":
		id, err := parseNodeID(params[0])
		if err != nil {
			return nil, err
		}
		// Absence of the property is a silent non-error; UNSET always
		// replies OK so the client never has to special-case "already
		// gone" versus "removed".
		if err := d.graph.RemoveProperty(id, params[1]); err != nil {
			return nil, err
		}
		return "OK", nil

	case "CONNECT":
		src, err := parseNodeID(params[0])
		if err != nil {
			return nil, err
		}
		tgt, err := parseNodeID(params[1])
		if err != nil {
			return nil, err
		}
		edge, err := d.graph.Connect(src, tgt, params[2], graph.NewString(params[3]))
		if err != nil {
			return nil, err
		}
		return edgeReply(edge), nil

	case "DISCONNECT":
		src, err := parseNodeID(params[0])
		if err != nil {
			return nil, err
		}
		tgt, err := parseNodeID(params[1])
		if err != nil {
			return nil, err
		}
		edge, err := d.graph.Disconnect(src, tgt, params[2])
		if err != nil {
			return nil, err
		}
		return edgeReply(edge), nil

	case "GET":
		id, err := parseNodeID(params[0])
		if err != nil {
			return nil, err
		}
		view, err := d.graph.GetNode(id)
		if err != nil {
			return nil, err
		}
		props := make(map[string]any, len(view.Properties))
		for k, v := range view.Properties {
			props[k] = v.String()
		}
		return map[string]any{
			"id":         int64(view.ID),
			"properties": props,
		}, nil

	case "EDGES":
		id, err := parseNodeID(params[0])
		if err != nil {
			return nil, err
		}
		forward, err := d.graph.ForwardEdges(id)
		if err != nil {
			return nil, err
		}
		backward, err := d.graph.BackwardEdges(id)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"forward":  edgeListReply(forward),
			"backward": edgeListReply(backward),
		}, nil

	case "FETCH":
		ids, err := session.engine.Fetch(params[0])
		if err != nil {
			return nil, err
		}
		return nodeIDListReply(ids), nil

	case "CLEAR":
		if err := session.engine.Clear(params[0]); err != nil {
			return nil, err
		}
		return "OK", nil

	case "START":
		ids := make([]graph.NodeID, len(params)-1)
		for i, raw := range params[1:] {
			id, err := parseNodeID(raw)
			if err != nil {
				return nil, err
			}
			ids[i] = id
		}
		return session.engine.Start(params[0], ids), nil

	case "FIND":
		return session.engine.Find(params[0], params[1], graph.NewString(params[2]), params[3])

	case "FORWARD":
		return session.engine.Forward(params[1], params[0], params[2:])

	case "BACKWARD":
		return session.engine.Backward(params[1], params[0], params[2:])

	case "FILTER":
		return session.engine.Filter(params[1], params[0], params[2], graph.NewString(params[3]), params[4])

	case "APPEND":
		return session.engine.Append(params[1], params[2], params[0])

	case "UNION":
		return session.engine.Union(params[1], params[2], params[0])

	case "INTERSECTION":
		return session.engine.Intersection(params[1], params[2], params[0])

	case "DIFFERENCE":
		return session.engine.Difference(params[1], params[2], params[0])

	default:
		return nil, fmt.Errorf("Unknown command '%s'", verb)
	}
}

// parseNodeID decodes a wire node-id token: already-integer tokens are
// accepted as-is (the wire codec already renders RESP integers as decimal
// strings before dispatch sees them), a "0x" prefix selects base 16,
// otherwise base 10. A parse failure or a resulting zero both produce the
// same "Invalid node id" error — id 0 is never valid even though a client
// may legitimately have meant it.
func parseNodeID(raw string) (graph.NodeID, error) {
	var (
		n   int64
		err error
	)
	if strings.HasPrefix(raw, "0x") {
		n, err = strconv.ParseInt(strings.TrimPrefix(raw, "0x"), 16, 64)
	} else {
		n, err = strconv.ParseInt(raw, 10, 64)
	}
	if err != nil || n == 0 {
		return 0, fmt.Errorf("Invalid node id (%s)", raw)
	}
	return graph.NodeID(n), nil
}

func edgeReply(e graph.EdgeView) map[string]any {
	return map[string]any{
		"source": int64(e.Source),
		"target": int64(e.Target),
		"type":   e.Type,
		"weight": e.Weight.String(),
	}
}

func edgeListReply(edges []graph.EdgeView) []any {
	out := make([]any, len(edges))
	for i, e := range edges {
		out[i] = edgeReply(e)
	}
	return out
}

func nodeIDListReply(ids []graph.NodeID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func toAnySlice(params []string) []any {
	out := make([]any, len(params))
	for i, p := range params {
		out[i] = p
	}
	return out
}

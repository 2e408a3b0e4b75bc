// Package storage provides the durability pipeline's sink contract: a
// uniform target for mutation commands, with an append-log implementation
// and a fan-out combinator. The replication sink lives in the sibling
// pkg/replication package (it needs a RESP peer transport this package
// has no reason to depend on).
package storage

// Sink is the three-method contract every storage target implements:
// Suppress silences Record during replay, Load replays persisted state
// into a fresh graph, and Record persists or forwards a mutation.
// Grounded on original_source/libs/Storage.py's HawthornStorage base
// class.
type Sink interface {
	// Suppress, when true, makes subsequent Record calls no-ops. Used
	// while Load replays a command stream so replay doesn't re-log or
	// re-replicate what it's replaying.
	Suppress(suppress bool)

	// Load replays any persisted state into exec. Callers must wrap this
	// in Suppress(true)/Suppress(false).
	Load(exec Executor) error

	// Record persists or forwards one accepted mutation. Only called for
	// CREATE, DELETE, SET, UNSET, CONNECT, DISCONNECT; query verbs never
	// reach Record.
	Record(verb string, params []any) error
}

// Executor is the minimal replay target a Sink's Load needs: something
// that can apply one already-validated mutation command. The dispatcher
// package implements this against a throwaway session bound to graph 0,
// without needing storage to import dispatch.
type Executor interface {
	ExecuteReplay(verb string, params []any) error
}

// Package replication implements the replication sink: holding
// connections to peer h3-tritium instances and re-issuing each accepted
// mutation against them over the same RESP wire protocol the session
// server speaks.
//
// The peer transport is github.com/redis/go-redis/v9's generic client:
// since our peers speak RESP but not the Redis command set, we never use
// go-redis's typed command helpers (Set, Get, ...) — only the generic
// (*redis.Client).Do(ctx, args...), which encodes args as a RESP bulk
// string array and returns whatever comes back. This is the same trick
// other_examples' falkordb.go uses to drive FalkorDB, a non-Redis RESP
// graph database, through an ordinary go-redis client.
package replication

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mgronhol/h3-tritium/pkg/storage"
)

// queueDepth bounds how far a peer can fall behind before Record starts
// blocking the caller. Sized generously so the common case (a healthy
// peer keeping up) never blocks; a peer stuck this far behind is already
// failing in a way a "logged, not surfaced" stance tolerates.
const queueDepth = 4096

type command struct {
	verb   string
	params []any
}

// peer owns one long-lived connection and one single-consumer goroutine
// that drains its queue, so commands reach that peer in the exact order
// they were recorded without making the dispatcher's global lock wait on
// peer I/O.
type peer struct {
	addr   string
	client *redis.Client
	queue  chan command
	logger *zap.Logger
	done   chan struct{}
}

func newPeer(addr string, logger *zap.Logger) *peer {
	p := &peer{
		addr:   addr,
		client: redis.NewClient(&redis.Options{Addr: addr}),
		queue:  make(chan command, queueDepth),
		logger: logger,
		done:   make(chan struct{}),
	}
	go p.drain()
	return p
}

func (p *peer) drain() {
	defer close(p.done)
	ctx := context.Background()
	for cmd := range p.queue {
		args := make([]any, 0, len(cmd.params)+1)
		args = append(args, cmd.verb)
		args = append(args, cmd.params...)

		// Peer failure is logged, never surfaced to the originating
		// client — a deliberately permissive stance rather than a tightened
		// one.
		if err := p.client.Do(ctx, args...).Err(); err != nil && err != redis.Nil {
			p.logger.Warn("replica delivery failed",
				zap.String("peer", p.addr), zap.String("op", cmd.verb), zap.Error(err))
		}
	}
}

func (p *peer) close() {
	close(p.queue)
	<-p.done
	_ = p.client.Close()
}

// Sink is the replication storage.Sink. An empty peer list disables
// replication entirely.
type Sink struct {
	peers      []*peer
	suppressed atomic.Bool
	logger     *zap.Logger
}

// New builds one go-redis client and one delivery goroutine per address
// in addrs. go-redis connects lazily, so no peer is dialed until the
// first command is delivered to it.
func New(addrs []string, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	peers := make([]*peer, 0, len(addrs))
	for _, addr := range addrs {
		peers = append(peers, newPeer(addr, logger))
	}
	return &Sink{peers: peers, logger: logger}
}

// Suppress implements storage.Sink.
func (s *Sink) Suppress(suppress bool) {
	s.suppressed.Store(suppress)
}

// Load is a no-op: replicas never hold state a restarting server should
// replay locally — only the append log replays on startup.
func (s *Sink) Load(_ storage.Executor) error {
	return nil
}

// Record enqueues verb/params for every peer. Reads are never
// replicated (only the dispatcher's six mutation verbs ever reach
// Record). Suppressed during local replay so restart doesn't
// re-replicate history every peer already has.
func (s *Sink) Record(verb string, params []any) error {
	if s.suppressed.Load() {
		return nil
	}
	for _, p := range s.peers {
		cp := make([]any, len(params))
		copy(cp, params)
		p.queue <- command{verb: verb, params: cp}
	}
	return nil
}

// Close drains and closes every peer connection.
func (s *Sink) Close() error {
	var firstErr error
	for _, p := range s.peers {
		p.close()
	}
	if firstErr != nil {
		return fmt.Errorf("replication: close: %w", firstErr)
	}
	return nil
}

// Package server runs the TCP accept loop: one goroutine per connection,
// each wrapping its socket in the RESP wire codec and feeding parsed
// commands to a shared dispatcher. Grounded on
// nornicdb/pkg/bolt/server.go's ListenAndServe/serve/handleConnection
// trio, generalized from Bolt framing to this RESP dialect.
package server

import (
	"net"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mgronhol/h3-tritium/pkg/dispatch"
	"github.com/mgronhol/h3-tritium/pkg/graph"
	"github.com/mgronhol/h3-tritium/pkg/resp"
)

// Server listens on one TCP address and dispatches every accepted
// connection's commands to a shared *dispatch.Dispatcher.
type Server struct {
	addr       string
	dispatcher *dispatch.Dispatcher
	graph      *graph.Graph
	logger     *zap.Logger

	listener net.Listener
	closed   atomic.Bool
}

// New builds a Server bound to addr ("host:port"), routing every
// connection's commands through d against g (used to bind each
// connection's private query-engine session).
func New(addr string, d *dispatch.Dispatcher, g *graph.Graph, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{addr: addr, dispatcher: d, graph: g, logger: logger}
}

// ListenAndServe binds addr and accepts connections until Close is
// called. It blocks; callers typically run it in its own goroutine.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.logger.Info("listening", zap.String("addr", s.addr))
	return s.serve()
}

func (s *Server) serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			s.logger.Warn("accept failed", zap.Error(err))
			continue
		}
		go s.handleConnection(conn)
	}
}

// Close stops accepting new connections. Connections already in flight
// run to completion.
func (s *Server) Close() error {
	s.closed.Store(true)
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("recovered from panic in connection handler", zap.Any("panic", r))
		}
	}()

	reader := resp.NewReader(conn)
	writer := resp.NewWriter(conn)
	session := dispatch.NewSession(s.graph)

	remote := conn.RemoteAddr().String()
	s.logger.Debug("connection accepted", zap.String("remote", remote))

	for {
		cmd, err := reader.ReadCommand()
		if err != nil {
			s.logger.Debug("connection closed", zap.String("remote", remote), zap.Error(err))
			return
		}

		reply, err := s.dispatcher.Dispatch(session, cmd)
		if err != nil {
			if werr := writer.WriteError(err.Error()); werr != nil {
				s.logger.Debug("write failed after dispatch error", zap.String("remote", remote), zap.Error(werr))
				return
			}
			continue
		}
		if werr := writer.WriteReply(reply); werr != nil {
			s.logger.Debug("write failed", zap.String("remote", remote), zap.Error(werr))
			return
		}
	}
}

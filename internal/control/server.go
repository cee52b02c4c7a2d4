// Package control exposes the power controller over a Unix socket.
// Each connection carries exactly one CBOR request and one CBOR
// response.
package control

import (
	"context"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/logger"
)

const (
	readTimeout    = 10 * time.Second
	writeTimeout   = 10 * time.Second
	maxRequestSize = 64 * 1024
)

// ActionFunc handles one action. raw is the full request, including
// the action field. A nil result yields {ok: true} with no data.
type ActionFunc func(ctx context.Context, raw []byte) (any, error)

// Response is the envelope of every reply.
type Response struct {
	OK    bool       `cbor:"ok"`
	Error string     `cbor:"error,omitempty"`
	Data  RawMessage `cbor:"data,omitempty"`
}

// Server dispatches socket requests to registered actions.
type Server struct {
	socketPath string
	handlers   map[string]ActionFunc
	logger     logger.Logger
	active     sync.WaitGroup
}

// NewServer returns a Server for socketPath. Register actions with
// Handle before calling Serve.
func NewServer(socketPath string, log logger.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		handlers:   make(map[string]ActionFunc),
		logger:     log,
	}
}

// Handle registers handler for action. It panics on duplicates.
func (s *Server) Handle(action string, handler ActionFunc) {
	if _, exists := s.handlers[action]; exists {
		panic("control: duplicate handler for action " + action)
	}
	s.handlers[action] = handler
}

// Serve accepts connections until ctx is cancelled, then waits for
// in-flight requests. A stale socket file is replaced; the socket file
// is removed on return.
func (s *Server) Serve(ctx context.Context) error {
	errFactory := errors.New()

	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return errFactory.Wrap(ErrListen, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return errFactory.Wrap(ErrListen, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info().Str("path", s.socketPath).Msg("Control socket listening")

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error().Err(err).Msg("Accept failed")
			continue
		}

		s.active.Add(1)
		go func() {
			defer s.active.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.active.Wait()

	return nil
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

	var raw RawMessage
	if err := newDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		s.writeError(conn, errors.New().Wrap(ErrInvalidRequest, err))
		return
	}

	var header struct {
		Action string `cbor:"action"`
	}
	if err := unmarshal(raw, &header); err != nil {
		s.writeError(conn, errors.New().Wrap(ErrInvalidRequest, err))
		return
	}
	if header.Action == "" {
		s.writeError(conn, errors.New().WithData(ErrMissingField, "action"))
		return
	}

	handler, exists := s.handlers[header.Action]
	if !exists {
		s.writeError(conn, errors.New().WithData(ErrUnknownAction, header.Action))
		return
	}

	result, err := handler(ctx, raw)
	if err != nil {
		s.logger.Debug().Str("action", header.Action).Err(err).Msg("Action failed")
		s.writeError(conn, err)
		return
	}

	s.writeSuccess(conn, result)
}

func (s *Server) writeError(conn net.Conn, err error) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := newEncoder(conn).Encode(Response{OK: false, Error: err.Error()}); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write error response")
	}
}

func (s *Server) writeSuccess(conn net.Conn, result any) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	response := Response{OK: true}
	if result != nil {
		data, err := marshal(result)
		if err != nil {
			s.writeError(conn, errors.New().Wrap(errors.ErrInternal, err))
			return
		}
		response.Data = data
	}

	if err := newEncoder(conn).Encode(response); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write response")
	}
}

package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"
)

const (
	maxRequestBytes    = 4 << 10
	defaultReadTimeout = 2 * time.Second
)

// Handler processes one IPC command request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Server answers one request per connection on the session socket.
type Server struct {
	Handler Handler
	Logger  *slog.Logger
	// ReadTimeout bounds how long a connected client may take to send its
	// request line. Handler time is not counted.
	ReadTimeout time.Duration
}

// Serve accepts clients until ctx is cancelled or the listener is closed,
// then waits for in-flight requests.
func (s Server) Serve(ctx context.Context, listener net.Listener) error {
	if s.Handler == nil {
		return errors.New("ipc server has no handler")
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept IPC connection: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			s.serveConn(ctx, conn)
		}()
	}
}

func (s Server) serveConn(ctx context.Context, conn net.Conn) {
	readTimeout := s.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

	var req Request
	if err := json.NewDecoder(io.LimitReader(conn, maxRequestBytes)).Decode(&req); err != nil {
		msg := fmt.Sprintf("decode request: %v", err)
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) {
			msg = fmt.Sprintf("read request: %v", err)
		}
		s.logger().Warn("ipc request rejected", "error", msg)
		_ = json.NewEncoder(conn).Encode(Response{OK: false, Error: msg})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	resp := s.Handler.Handle(ctx, req)
	s.logger().Debug("ipc request", "command", req.Command, "ok", resp.OK, "state", resp.State)
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		s.logger().Warn("ipc response failed", "command", req.Command, "error", err.Error())
	}
}

func (s Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

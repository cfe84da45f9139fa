package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Server принимает TCP-соединения и запускает Handler на каждое в своей горутине
type Server struct {
	addr     string
	handler  *Handler
	logger   *zap.Logger
	listener net.Listener

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool
	wg      sync.WaitGroup
}

func NewServer(addr string, handler *Handler, logger *zap.Logger) *Server {
	return &Server{
		addr:    addr,
		handler: handler,
		logger:  logger,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Listen занимает адрес. Ошибка здесь фатальна для процесса.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.listener = ln
	s.logger.Info("✅ TCP server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr фактический адрес после Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve принимает соединения, пока не отменён ctx.
// При остановке закрывает открытые соединения и ждёт их обработчики.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("tcp server: Listen must be called before Serve")
	}

	go func() {
		<-ctx.Done()
		s.listener.Close()
		s.closeConns()
	}()

	defer s.wg.Wait()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info("TCP server stopped")
				return nil
			}
			s.logger.Error("Accept failed", zap.Error(err))
			time.Sleep(50 * time.Millisecond)
			continue
		}

		if !s.track(conn) {
			conn.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handler.Serve(ctx, conn)
		}()
	}
}

// track регистрирует соединение; false, если остановка уже началась
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closing = true
	for conn := range s.conns {
		conn.Close()
	}
}

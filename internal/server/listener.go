package server

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

// ConnectionHandler is called on its own goroutine for each accepted
// connection. The handler owns the connection and must close it.
type ConnectionHandler func(conn net.Conn)

// Listener accepts TCP connections and hands each one to a handler.
type Listener struct {
	name    string
	addr    string
	handler ConnectionHandler
	log     *zap.Logger

	mu sync.Mutex
	ln net.Listener
}

// NewListener creates a TCP listener. name labels the listener in logs.
func NewListener(name string, port int, handler ConnectionHandler, log *zap.Logger) *Listener {
	return &Listener{
		name:    name,
		addr:    fmt.Sprintf(":%d", port),
		handler: handler,
		log:     log,
	}
}

// ListenAndServe binds the port and accepts until Close is called.
func (l *Listener) ListenAndServe() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", l.addr, err)
	}
	return l.Serve(ln)
}

// Serve accepts connections on ln until it is closed. It returns nil after
// Close.
func (l *Listener) Serve(ln net.Listener) error {
	l.mu.Lock()
	l.ln = ln
	l.mu.Unlock()
	defer ln.Close()

	l.log.Info("listening", zap.String("listener", l.name), zap.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.log.Warn("accept failed", zap.String("listener", l.name), zap.Error(err))
			continue
		}
		go l.handler(conn)
	}
}

// Close stops accepting new connections. Open connections are unaffected.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Close()
}

package observability

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// ShutdownFunc is a cleanup function invoked during graceful shutdown.
type ShutdownFunc func(ctx context.Context) error

type shutdownHook struct {
	name string
	fn   ShutdownFunc
}

// ShutdownManager coordinates graceful shutdown. Hooks run in reverse
// registration order, mirroring construction order.
type ShutdownManager struct {
	mu      sync.Mutex
	hooks   []shutdownHook
	timeout time.Duration
	log     *logrus.Entry
}

// NewShutdownManager creates a shutdown manager with the given overall timeout.
func NewShutdownManager(timeout time.Duration, log *logrus.Entry) *ShutdownManager {
	return &ShutdownManager{timeout: timeout, log: log}
}

// Register adds a named shutdown hook.
func (s *ShutdownManager) Register(name string, fn ShutdownFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, shutdownHook{name: name, fn: fn})
}

// Wait blocks until SIGINT or SIGTERM, then runs all hooks.
func (s *ShutdownManager) Wait() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig
	s.log.WithField("signal", received.String()).Info("shutting down")
	s.Shutdown()
}

// Shutdown runs the registered hooks in reverse order under the configured
// timeout. Hook failures are logged, not fatal.
func (s *ShutdownManager) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.mu.Lock()
	hooks := make([]shutdownHook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		if err := hook.fn(ctx); err != nil {
			s.log.WithError(err).WithField("hook", hook.name).Warn("shutdown hook failed")
			continue
		}
		s.log.WithField("hook", hook.name).Debug("shutdown hook completed")
	}
}

package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/state"
)

const (
	defaultRetryInterval = 2 * time.Second
	maxBackoff           = 30 * time.Second
)

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	if failures > 16 {
		return maxBackoff
	}
	backoff := base << failures
	if backoff > maxBackoff || backoff <= 0 {
		return maxBackoff
	}
	return backoff
}

type notificationStream interface {
	Next() (host.Notification, error)
	Close() error
}

type dialFunc func(ctx context.Context) (notificationStream, error)

// Listener keeps the push notification stream open and feeds it to the
// store. It is the only writer of host pushes into the cache.
type Listener struct {
	dial  dialFunc
	store *state.Store
	log   *zap.Logger
	base  time.Duration

	mu        sync.RWMutex
	connected bool
	lastErr   error
}

// NewListener returns a listener subscribing through client.
func NewListener(client *host.Client, store *state.Store, logger *zap.Logger) *Listener {
	dial := func(ctx context.Context) (notificationStream, error) {
		s, err := client.Subscribe(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return newListener(dial, store, logger)
}

func newListener(dial dialFunc, store *state.Store, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		dial:  dial,
		store: store,
		log:   logger.Named("listener"),
		base:  defaultRetryInterval,
	}
}

// Run applies notifications until ctx is cancelled, reconnecting with
// exponential backoff. After every successful connect the store is refreshed,
// since pushes sent while disconnected are lost.
func (l *Listener) Run(ctx context.Context) error {
	failures := 0
	for {
		connected, err := l.session(ctx)
		if ctx.Err() != nil {
			l.setStatus(false, nil)
			return nil
		}
		if connected {
			failures = 0
		}
		l.setStatus(false, err)

		wait := calculateBackoff(failures, l.base)
		failures++
		l.log.Warn("notification stream lost", zap.Error(err), zap.Duration("retry_in", wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.setStatus(false, nil)
			return nil
		case <-timer.C:
		}
	}
}

func (l *Listener) session(ctx context.Context) (bool, error) {
	stream, err := l.dial(ctx)
	if err != nil {
		return false, err
	}
	defer stream.Close()

	l.setStatus(true, nil)
	l.log.Info("notification stream connected")
	if err := l.store.Refresh(ctx); err != nil {
		l.log.Warn("refresh after connect failed", zap.Error(err))
	}

	for {
		n, err := stream.Next()
		if err != nil {
			return true, err
		}
		if err := l.store.Dispatch(n); err != nil {
			l.log.Warn("dropping notification", zap.String("name", n.Name), zap.Error(err))
		}
	}
}

func (l *Listener) setStatus(connected bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = connected
	if connected || err != nil {
		l.lastErr = err
	}
}

// Connected reports whether the stream is currently open.
func (l *Listener) Connected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.connected
}

// LastError returns the error that closed the most recent connection.
func (l *Listener) LastError() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

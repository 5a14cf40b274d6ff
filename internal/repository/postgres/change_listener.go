package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"eventify/internal/domain"
)

// ChangeChannel is the NOTIFY channel written by the eventify_notify_change trigger.
const ChangeChannel = "eventify_changes"

// ChangeHandler receives decoded row changes.
type ChangeHandler func(ctx context.Context, change domain.ChangeEvent)

// ChangeListener forwards LISTEN/NOTIFY payloads from Postgres to a handler.
type ChangeListener struct {
	Logger      *slog.Logger
	dsn         string
	minBackoff  time.Duration
	maxBackoff  time.Duration
	onChange    ChangeHandler
	onReconnect func(ctx context.Context)
}

// NewChangeListener builds a listener for dsn. onReconnect runs after the connection was
// re-established, since notifications sent while disconnected are lost.
func NewChangeListener(dsn string, logger *slog.Logger, onChange ChangeHandler, onReconnect func(ctx context.Context)) *ChangeListener {
	return &ChangeListener{
		Logger:      logger,
		dsn:         dsn,
		minBackoff:  time.Second,
		maxBackoff:  30 * time.Second,
		onChange:    onChange,
		onReconnect: onReconnect,
	}
}

// Run listens until ctx is cancelled.
func (l *ChangeListener) Run(ctx context.Context) error {
	reconnected := make(chan struct{}, 1)
	listener := pq.NewListener(l.dsn, l.minBackoff, l.maxBackoff, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventDisconnected:
			l.Logger.Warn("change listener disconnected", "err", err)
		case pq.ListenerEventReconnected:
			l.Logger.Info("change listener reconnected")
			select {
			case reconnected <- struct{}{}:
			default:
			}
		case pq.ListenerEventConnectionAttemptFailed:
			l.Logger.Warn("change listener connection attempt failed", "err", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(ChangeChannel); err != nil {
		return fmt.Errorf("listen %s: %w", ChangeChannel, err)
	}
	l.Logger.Info("change listener started", "channel", ChangeChannel)

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reconnected:
			if l.onReconnect != nil {
				l.onReconnect(ctx)
			}
		case n := <-listener.Notify:
			// nil is sent after a reconnect.
			if n == nil {
				continue
			}
			change, err := decodeNotification(n.Extra)
			if err != nil {
				l.Logger.Warn("dropping malformed change notification", "err", err)
				continue
			}
			l.onChange(ctx, change)
		case <-ping.C:
			if err := listener.Ping(); err != nil {
				l.Logger.Warn("change listener ping failed", "err", err)
			}
		}
	}
}

func decodeNotification(payload string) (domain.ChangeEvent, error) {
	var change domain.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return change, fmt.Errorf("decode notification: %w", err)
	}
	switch change.Table {
	case domain.TableEvents, domain.TableRegistrations:
	default:
		return change, fmt.Errorf("unknown table %q: %w", change.Table, domain.ErrInvalidInput)
	}
	switch change.Op {
	case domain.OpInsert, domain.OpUpdate, domain.OpDelete:
	default:
		return change, fmt.Errorf("unknown op %q: %w", change.Op, domain.ErrInvalidInput)
	}
	return change, nil
}

// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/waybar-whereto/internal/logger"
)

const (
	dbusInterface   = "org.freedesktop.login1.Manager"
	dbusWatchMember = "PrepareForSleep"

	debounceWindow   = time.Second * 2
	signalBufferSize = 8

	busReconnectDelay   = 5 * time.Second
	networkWakeupDelay  = 10 * time.Second
	reconnectDelay      = 2 * time.Second
	subscribeRetryDelay = 10 * time.Second
)

// resumeDebouncer drops resume events that follow each other within the debounce window.
type resumeDebouncer struct {
	last atomic.Int64
	now  func() time.Time
}

func newResumeDebouncer() *resumeDebouncer {
	return &resumeDebouncer{now: time.Now}
}

// allow reports whether a resume event should be handled and records it if so.
func (d *resumeDebouncer) allow() bool {
	now := d.now().UnixNano()
	last := d.last.Load()
	if last != 0 && time.Duration(now-last) < debounceWindow {
		return false
	}
	return d.last.CompareAndSwap(last, now)
}

// isResumeSignal reports whether sgn is a PrepareForSleep(false) signal, which logind sends
// after the system woke up.
func isResumeSignal(sgn *dbus.Signal) bool {
	if sgn == nil || len(sgn.Body) != 1 {
		return false
	}
	sleeping, ok := sgn.Body[0].(bool)
	return ok && !sleeping
}

// monitorSleepResume watches logind for resume events and rerolls the recommendations after
// each wake-up. Lost bus connections are re-established until ctx is done.
func (s *Service) monitorSleepResume(ctx context.Context) {
	debouncer := newResumeDebouncer()

	for {
		conn := s.connectToSystemBus(ctx)
		if conn == nil {
			return
		}
		if !s.subscribeSleepSignal(ctx, conn) {
			continue
		}

		sigCh := make(chan *dbus.Signal, signalBufferSize)
		conn.Signal(sigCh)
		s.logger.Debug("subscribed to dbus signal", slog.String("interface", dbusInterface),
			slog.String("member", dbusWatchMember))

		s.watchSleepSignals(ctx, sigCh, debouncer)

		conn.RemoveSignal(sigCh)
		if err := conn.Close(); err != nil {
			s.logger.Debug("failed to close system bus connection", logger.Err(err))
		}
		if !waitOrDone(ctx, reconnectDelay) {
			return
		}
	}
}

// connectToSystemBus retries until the system bus is reachable. It returns nil once ctx is done.
func (s *Service) connectToSystemBus(ctx context.Context) *dbus.Conn {
	for {
		conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
		if err == nil {
			return conn
		}
		s.logger.Debug("system bus not reachable", logger.Err(err))
		if !waitOrDone(ctx, busReconnectDelay) {
			return nil
		}
	}
}

func (s *Service) subscribeSleepSignal(ctx context.Context, conn *dbus.Conn) bool {
	err := conn.AddMatchSignal(dbus.WithMatchInterface(dbusInterface), dbus.WithMatchMember(dbusWatchMember))
	if err == nil {
		return true
	}
	s.logger.Error("failed to subscribe to dbus signal", slog.String("interface", dbusInterface),
		slog.String("member", dbusWatchMember), logger.Err(err))
	if err = conn.Close(); err != nil {
		s.logger.Debug("failed to close system bus connection", logger.Err(err))
	}
	waitOrDone(ctx, subscribeRetryDelay)
	return false
}

// watchSleepSignals returns when ctx is done or the signal channel is closed.
func (s *Service) watchSleepSignals(ctx context.Context, sigCh <-chan *dbus.Signal, debouncer *resumeDebouncer) {
	for {
		select {
		case <-ctx.Done():
			return
		case sgn, ok := <-sigCh:
			if !ok {
				return
			}
			if !isResumeSignal(sgn) || !debouncer.allow() {
				continue
			}
			go s.handleResume(ctx)
		}
	}
}

// handleResume gives the network time to come back before searching again.
func (s *Service) handleResume(ctx context.Context) {
	if !waitOrDone(ctx, networkWakeupDelay) {
		return
	}
	s.logger.Debug("resumed from sleep, rerolling recommendations")
	s.reroll(ctx)
}

func waitOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

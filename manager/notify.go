package manager

import (
	"fmt"
	"runtime"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// notify schedules delivery of cfg. Changes arriving before the scheduled
// delivery runs replace each other, so listeners see only the latest one.
func (m *Manager) notify(cfg Config) {
	m.mu.Lock()
	m.pending = cfg
	m.seq++
	if m.scheduled {
		m.mu.Unlock()
		return
	}
	m.scheduled = true
	m.drains++
	m.mu.Unlock()

	go m.drain()
}

func (m *Manager) drain() {
	defer m.drained()

	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	m.scheduled = false
	if m.seq == m.delivered {
		m.mu.Unlock()
		return
	}
	cfg, seq := m.pending, m.seq
	m.delivered = seq
	subs := make([]subscription, len(m.listeners))
	copy(subs, m.listeners)
	m.mu.Unlock()

	var errs error
	for start := 0; start < len(subs); start += m.batch {
		if start > 0 {
			runtime.Gosched()
		}
		end := min(start+m.batch, len(subs))
		for _, s := range subs[start:end] {
			if err := deliver(s, cfg); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}
	if errs != nil {
		m.log.Warn("Some listeners failed",
			zap.Int("failed", len(multierr.Errors(errs))),
			zap.Int("listeners", len(subs)),
			zap.Error(errs))
	}
}

func deliver(s subscription, cfg Config) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener %s panicked: %v", s.id, r)
		}
	}()
	if err := s.fn(cfg); err != nil {
		return fmt.Errorf("listener %s: %w", s.id, err)
	}
	return nil
}

func (m *Manager) drained() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drains--
	if m.drains == 0 {
		m.idle.Broadcast()
	}
}

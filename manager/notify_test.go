package manager

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sizekit/size"
)

func TestNotify_CoalescesRapidChanges(t *testing.T) {
	m, err := New(size.NewContext())
	require.NoError(t, err)
	defer m.Destroy()

	var (
		mu  sync.Mutex
		got []Config
	)
	m.Subscribe(func(cfg Config) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, cfg)
		return nil
	})

	// hold delivery until all changes are queued
	m.deliverMu.Lock()
	for _, base := range []float64{12, 14, 18, 20} {
		require.NoError(t, m.SetConfig(Config{BaseSize: base}))
	}
	m.deliverMu.Unlock()
	m.Flush()

	assert.Equal(t, []Config{{BaseSize: 20}}, got)

	require.NoError(t, m.SetConfig(Config{BaseSize: 10}))
	m.Flush()
	assert.Equal(t, []Config{{BaseSize: 20}, {BaseSize: 10}}, got)
}

func TestNotify_NothingPendingIsNoop(t *testing.T) {
	m, err := New(size.NewContext())
	require.NoError(t, err)

	calls := 0
	m.Subscribe(func(Config) error {
		calls++
		return nil
	})

	m.mu.Lock()
	m.drains++
	m.mu.Unlock()
	m.drain()
	assert.Zero(t, calls)
	assert.Zero(t, m.drains)
}

func TestFlush_ConcurrentWithNotify(t *testing.T) {
	m, err := New(size.NewContext())
	require.NoError(t, err)
	defer m.Destroy()

	var (
		mu   sync.Mutex
		last Config
	)
	m.Subscribe(func(cfg Config) error {
		mu.Lock()
		defer mu.Unlock()
		last = cfg
		return nil
	})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := range 20 {
				assert.NoError(t, m.SetConfig(Config{BaseSize: float64(10 + (i+j)%30)}))
			}
		}()
		go func() {
			defer wg.Done()
			for range 20 {
				m.Flush()
			}
		}()
	}
	wg.Wait()
	m.Flush()

	assert.Zero(t, m.drains)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, m.Config(), last)
}

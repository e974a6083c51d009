package cronjob

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	mu    sync.Mutex
	calls int
	idle  time.Duration
}

func (s *countingSweeper) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.idle = idle
	return 1
}

func (s *countingSweeper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestScheduler_RunOnce(t *testing.T) {
	sw := &countingSweeper{}
	s := NewScheduler(sw, "0 */5 * * * *", 30*time.Minute, zap.NewNop())

	s.RunOnce()
	assert.Equal(t, 1, sw.Calls())
	assert.Equal(t, 30*time.Minute, sw.idle)
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler(&countingSweeper{}, "every tuesday", time.Minute, zap.NewNop())
	assert.Error(t, s.Start())
}

func TestScheduler_Fires(t *testing.T) {
	sw := &countingSweeper{}
	s := NewScheduler(sw, "* * * * * *", time.Minute, zap.NewNop())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return sw.Calls() > 0 }, 3*time.Second, 50*time.Millisecond)
}

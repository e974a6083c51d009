package cronjob

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper is the part of the desk manager the scheduler drives.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

type Scheduler struct {
	desks    Sweeper
	idle     time.Duration
	schedule string
	log      *zap.Logger
	c        *cron.Cron
}

func NewScheduler(desks Sweeper, schedule string, idle time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		desks:    desks,
		idle:     idle,
		schedule: schedule,
		log:      log,
		c:        cron.New(cron.WithSeconds()),
	}
}

// Start registers the idle-desk sweep and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.c.AddFunc(s.schedule, s.RunOnce); err != nil {
		return err
	}

	s.log.Info("desk sweeper started", zap.String("schedule", s.schedule), zap.Duration("idle", s.idle))
	s.c.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}

// RunOnce evicts desks idle for longer than the configured window.
func (s *Scheduler) RunOnce() {
	if n := s.desks.Sweep(s.idle); n > 0 {
		s.log.Info("idle desks released", zap.Int("count", n))
	}
}

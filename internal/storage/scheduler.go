package storage

import (
	"context"
	"sync"

	"gamatrix/internal/providers"
	"gamatrix/internal/storage/interfaces"
	"gamatrix/internal/structures"

	"github.com/roylee0704/gron"
)

// Scheduler periodically asks the rescanner to pick up changed source
// databases. A zero rescan interval disables it.
type Scheduler struct {
	config    *structures.Config
	logger    providers.Logger
	rescanner interfaces.RescannerInterface
	cron      *gron.Cron
	opsMu     sync.Mutex
	stopped   bool
}

func (s *Scheduler) Init() {
	interval := s.config.Ingestion.RescanInterval
	if interval <= 0 {
		s.logger.Infof(providers.TypeApp, "Source rescan disabled")
		return
	}

	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(interval), func() {
		s.Tick(context.Background())
	})
	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Source rescan every %s", interval)
}

// Tick runs one rescan. Overlapping ticks are serialized and ticks after
// Stop are dropped.
func (s *Scheduler) Tick(ctx context.Context) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	if s.stopped {
		return
	}

	n, err := s.rescanner.Rescan(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while rescanning sources: %s", err)
		return
	}
	if n > 0 {
		s.logger.Infof(providers.TypeApp, "Rescan refreshed %d users", n)
	}
}

// Stop halts the schedule and waits for an in-flight rescan to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.opsMu.Lock()
	s.stopped = true
	s.opsMu.Unlock()
}

func NewScheduler(config *structures.Config, logger providers.Logger, rescanner interfaces.RescannerInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:    config,
		logger:    logger,
		rescanner: rescanner,
	}
}

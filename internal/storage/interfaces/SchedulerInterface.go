package interfaces

import "context"

type SchedulerInterface interface {
	Init()
	Stop()
}

// RescannerInterface re-ingests every user whose source changed since the
// last ingestion and reports how many were refreshed.
type RescannerInterface interface {
	Rescan(ctx context.Context) (int, error)
}

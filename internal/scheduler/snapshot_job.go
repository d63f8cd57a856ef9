package scheduler

import (
	"context"
	"time"

	"github.com/aristath/assetsim/internal/modules/simulation"
)

// SnapshotRefresher recomputes the default simulation snapshot
type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context) (*simulation.Report, error)
}

// SnapshotJob refreshes the light-mode snapshot of the default parameters
type SnapshotJob struct {
	refresher SnapshotRefresher
	timeout   time.Duration
}

// NewSnapshotJob creates a snapshot job; each run is bounded by timeout.
func NewSnapshotJob(refresher SnapshotRefresher, timeout time.Duration) *SnapshotJob {
	return &SnapshotJob{refresher: refresher, timeout: timeout}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "refresh_default_snapshot"
}

// Run refreshes the snapshot
func (j *SnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, err := j.refresher.RefreshSnapshot(ctx)
	return err
}

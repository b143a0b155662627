package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/campuslabs/labstock-backend/pkg/logger"
	"github.com/campuslabs/labstock-backend/pkg/metrics"
)

const overdueJobName = "overdue-reservations"

type overdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// OverdueJobParams configure the overdue reservation sweep.
type OverdueJobParams struct {
	Logger     *logger.Logger
	Repository overdueMarker
	Metrics    *metrics.JobMetrics
}

type overdueJob struct {
	logg    *logger.Logger
	repo    overdueMarker
	metrics *metrics.JobMetrics
	now     func() time.Time
}

// NewOverdueJob builds the job that flips expired reservations to Overdue.
// The update is a single conditional statement, so a run is idempotent and
// safe to interleave with approvals and returns.
func NewOverdueJob(params OverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	return &overdueJob{
		logg:    params.Logger,
		repo:    params.Repository,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

func (j *overdueJob) Name() string { return overdueJobName }

func (j *overdueJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	swept, err := j.repo.MarkOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("mark overdue: %w", err)
	}
	j.metrics.AddSwept(overdueJobName, int(swept))
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":             now,
		"reservations_swept": swept,
	})
	j.logg.Info(logCtx, "overdue sweep complete")
	return nil
}

// Package schedule runs the configured loans through the amortization engine
// and collects one schedule per loan.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result holds the schedule produced for a single configured loan.
type Result struct {
	RunID       uuid.UUID
	Name        string
	GeneratedAt time.Time
	Schedule    *loans.Schedule
}

// GetSchedules builds the repayment schedule of every loan in conf. Loans are
// independent so they run concurrently; results keep the configuration order.
func GetSchedules(ctx context.Context, logger *zap.Logger, conf config.Configuration) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Result, len(conf.Loans))
	g, gctx := errgroup.WithContext(ctx)

	for i := range conf.Loans {
		i := i
		loan := conf.Loans[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := run(logger, &loan)
			if err != nil {
				return fmt.Errorf("loan %q: %w", loan.Name, err)
			}
			// A schedule finished after the deadline is discarded.
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("loan %q: %w", loan.Name, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func run(logger *zap.Logger, loan *config.Loan) (Result, error) {
	runID := uuid.New()
	runLogger := logger.With(zap.String("loan", loan.Name), zap.String("runID", runID.String()))

	req, err := loan.ToScheduleRequest()
	if err != nil {
		return Result{}, err
	}

	runLogger.Debug("generating schedule",
		zap.String("op", "schedule.run"),
		zap.Int("periods", len(req.Periods)),
		zap.Int("variations", len(req.Variations)),
	)

	sched, err := loans.GenerateSchedule(runLogger, req)
	if err != nil {
		return Result{}, err
	}

	return Result{
		RunID:       runID,
		Name:        loan.Name,
		GeneratedAt: time.Now().UTC(),
		Schedule:    sched,
	}, nil
}

package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/queue/port"
	"github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/usecase"
	repoAdapter "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/adapter"
)

// SweepInactiveTaskType is the queue task name for the inactivity sweep.
const SweepInactiveTaskType = "channel:sweep_inactive"

const (
	sweepQueue       = "maintenance"
	sweepInterval    = 24 * time.Hour
	inactivityWindow = 30 * 24 * time.Hour
	sweepTimeout     = 2 * time.Minute
)

// RegisterSweepInactiveTask binds the sweep handler. Each run deletes stale
// channels and schedules the next run, so the sweep keeps itself alive once
// seeded.
func RegisterSweepInactiveTask(srv qport.Server, client qport.Client, pool *pgxpool.Pool, em usecase.Emitter, log *slog.Logger) {
	srv.Register(SweepInactiveTaskType, func(ctx context.Context, t qport.Task) error {
		ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
		defer cancel()

		uc := usecase.NewSweepInactiveChannelsUseCase(repoAdapter.NewPgChannelRepository(pool), em)
		removed, err := uc.Execute(ctx, time.Now().UTC().Add(-inactivityWindow))
		if err != nil {
			return err
		}
		if removed > 0 {
			log.Info("inactive channels removed", "count", removed)
		}

		if _, err := client.Enqueue(ctx, qport.Task{Type: SweepInactiveTaskType}, qport.EnqueueOption{
			Queue:     sweepQueue,
			ProcessIn: sweepInterval,
			UniqueTTL: sweepInterval,
		}); err != nil {
			log.Warn("sweep reschedule failed", "error", err)
		}
		return nil
	})
}

// ScheduleSweep enqueues the first sweep run. The uniqueness window keeps
// multiple instances from double-scheduling at boot.
func ScheduleSweep(ctx context.Context, client qport.Client) error {
	_, err := client.Enqueue(ctx, qport.Task{Type: SweepInactiveTaskType}, qport.EnqueueOption{
		Queue:     sweepQueue,
		UniqueTTL: sweepInterval,
	})
	return err
}

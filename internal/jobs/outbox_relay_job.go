package jobs

import (
	"context"
	"log/slog"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// DefaultOutboxRelaySchedule runs the relay every five seconds.
const DefaultOutboxRelaySchedule = "@every 5s"

// OutboxRelayer is implemented by commands.RelayOutboxCommandHandler.
type OutboxRelayer interface {
	Handle(ctx context.Context, cmd commands.RelayOutboxCommand) (commands.RelayOutboxResult, error)
}

// OutboxRelayJob periodically re-sends messages stored in the outbox.
type OutboxRelayJob struct {
	handler  OutboxRelayer
	cmd      commands.RelayOutboxCommand
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewOutboxRelayJob creates the relay job. An empty schedule falls back to
// DefaultOutboxRelaySchedule.
func NewOutboxRelayJob(
	handler OutboxRelayer, cmd commands.RelayOutboxCommand, schedule string, logger *slog.Logger,
) *OutboxRelayJob {
	if schedule == "" {
		schedule = DefaultOutboxRelaySchedule
	}

	return &OutboxRelayJob{
		handler:  handler,
		cmd:      cmd,
		schedule: schedule,
		// A pass that is still running when the next tick fires is not overlapped.
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger.With("component", "outbox_relay_job"),
	}
}

// Start registers the relay with the scheduler and starts it.
func (j *OutboxRelayJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started", "schedule", j.schedule)
	return nil
}

// Run executes a single relay pass.
func (j *OutboxRelayJob) Run() {
	ctx := context.Background()

	result, err := j.handler.Handle(ctx, j.cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox relay job failed", "error", err)
		return
	}

	metrics.OutboxRelayed.WithLabelValues("published").Add(float64(result.Published))
	metrics.OutboxRelayed.WithLabelValues("failed").Add(float64(result.Failed))

	if result.Published > 0 || result.Failed > 0 {
		j.logger.InfoContext(ctx, "Outbox relayed", "published", result.Published, "failed", result.Failed)
	}
}

// Stop stops scheduling and waits for a running pass to finish.
func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}

// Package jobs provides scheduled background tasks for the order service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// OutboxRelayJob runs every five seconds by default. It loads a batch of
// PENDING outbox messages, sends each one synchronously through the producer
// and marks it PUBLISHED. A failed send increments the attempt counter and the
// message becomes FAILED once it reaches the configured maximum.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	relay := jobs.NewOutboxRelayJob(&relayHandler, relayCmd, "@every 5s", logger)
//	jobManager := jobs.NewJobManager(relay)
//
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Send failures are recorded on the message and never stop the pass. Storage
// errors roll the pass back; the rows are picked up again on the next tick.
// Overlapping runs are skipped.
package jobs

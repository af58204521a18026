package jobs_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxRelayer struct{ mock.Mock }

func (m *MockOutboxRelayer) Handle(ctx context.Context, cmd commands.RelayOutboxCommand) (commands.RelayOutboxResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.RelayOutboxResult), args.Error(1)
}

func relayCommand(t *testing.T) commands.RelayOutboxCommand {
	t.Helper()
	cmd, err := commands.NewRelayOutboxCommand(10, 3, time.Minute)
	require.NoError(t, err)
	return cmd
}

func TestOutboxRelayJob_Run(t *testing.T) {
	relayer := new(MockOutboxRelayer)
	cmd := relayCommand(t)
	relayer.On("Handle", mock.Anything, cmd).Return(commands.RelayOutboxResult{Published: 2}, nil).Once()

	jobs.NewOutboxRelayJob(relayer, cmd, "", slog.New(slog.DiscardHandler)).Run()

	relayer.AssertExpectations(t)
}

func TestOutboxRelayJob_Run_Error(t *testing.T) {
	relayer := new(MockOutboxRelayer)
	relayer.On("Handle", mock.Anything, mock.Anything).
		Return(commands.RelayOutboxResult{}, errors.New("db unavailable")).Once()

	assert.NotPanics(t, func() {
		jobs.NewOutboxRelayJob(relayer, relayCommand(t), "", slog.New(slog.DiscardHandler)).Run()
	})
	relayer.AssertExpectations(t)
}

func TestOutboxRelayJob_RunsOnSchedule(t *testing.T) {
	relayer := new(MockOutboxRelayer)
	called := make(chan struct{}, 1)
	relayer.On("Handle", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case called <- struct{}{}:
			default:
			}
		}).
		Return(commands.RelayOutboxResult{}, nil)

	job := jobs.NewOutboxRelayJob(relayer, relayCommand(t), "@every 1s", slog.New(slog.DiscardHandler))
	require.NoError(t, job.Start())
	defer job.Stop()

	select {
	case <-called:
	case <-time.After(3 * time.Second):
		t.Fatal("relay was not scheduled")
	}
}

func TestOutboxRelayJob_InvalidSchedule(t *testing.T) {
	job := jobs.NewOutboxRelayJob(new(MockOutboxRelayer), relayCommand(t), "every now and then",
		slog.New(slog.DiscardHandler))

	require.Error(t, job.Start())
}

type fakeJob struct {
	startErr error
	events   *[]string
	name     string
}

func (j fakeJob) Start() error {
	*j.events = append(*j.events, "start "+j.name)
	return j.startErr
}

func (j fakeJob) Stop() { *j.events = append(*j.events, "stop "+j.name) }

func TestJobManager_StartAndStop(t *testing.T) {
	var events []string
	jm := jobs.NewJobManager(fakeJob{name: "a", events: &events}, fakeJob{name: "b", events: &events})

	require.NoError(t, jm.StartAll())
	jm.StopAll()

	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, events)
}

func TestJobManager_StartFailureStopsStartedJobs(t *testing.T) {
	var events []string
	jm := jobs.NewJobManager(
		fakeJob{name: "a", events: &events},
		fakeJob{name: "b", events: &events, startErr: errors.New("bad schedule")},
	)

	require.Error(t, jm.StartAll())
	assert.Equal(t, []string{"start a", "start b", "stop a"}, events)
}

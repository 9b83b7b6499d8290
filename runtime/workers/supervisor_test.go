package workers

import (
	"chat-client/errors"
	"chat-client/mocks"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reported struct {
	mu   sync.Mutex
	errs []error
}

func (r *reported) add(_ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *reported) all() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func TestSupervisor_PanicIsReportedNotRestarted(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	workerMock := mocks.NewMockWorker(ctrl)
	var rep reported

	// Given a worker that panics, expected to run only once
	workerMock.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			panic("boom")
		}).
		Times(1)

	sup := NewSupervisor(slog.Default(), rep.add)
	job := sup.Start(context.Background(), workerMock)

	// Then the panic becomes a reported error
	req.True(job.WaitFor(time.Second))
	req.ErrorIs(job.Err(), errors.ErrWorkerPanic)
	req.Len(rep.all(), 1)
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	workerMock := mocks.NewMockWorker(ctrl)
	var rep reported

	// Given a worker running only once
	workerMock.EXPECT().
		Run(gomock.Any()).
		Return(nil).
		Times(1)

	sup := NewSupervisor(slog.Default(), rep.add)
	job := sup.Start(context.Background(), workerMock)

	select {
	case <-job.Done():
		// Then supervisor detected a success and nothing was reported
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after worker success")
	}
	sup.Wait()
	req.NoError(job.Err())
	req.Empty(rep.all())
}

func TestSupervisor_CancellationIsSilent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	workerMock := mocks.NewMockWorker(ctrl)
	var rep reported
	ctx, cancel := context.WithCancel(context.Background())

	workerMock.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}).
		Times(1)

	job := NewSupervisor(slog.Default(), rep.add).Start(ctx, workerMock)

	// Given the worker is still running
	req.False(job.WaitFor(20 * time.Millisecond))

	// When its context is cancelled
	cancel()

	// Then it stops and no error is reported
	req.True(job.WaitFor(0))
	req.NoError(job.Err())
	req.Empty(rep.all())
}

func TestSupervisor_FailureIsReported(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	workerMock := mocks.NewMockWorker(ctrl)
	var rep reported
	failure := fmt.Errorf("disk full")

	workerMock.EXPECT().Run(gomock.Any()).Return(failure).Times(1)

	job := NewSupervisor(slog.Default(), rep.add).Start(context.Background(), workerMock)

	req.ErrorIs(job.Err(), failure)
	req.Equal([]error{failure}, rep.all())
}

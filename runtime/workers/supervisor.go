package workers

import (
	"chat-client/contract"
	"chat-client/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Supervisor runs each worker in its own goroutine exactly once.
// Pumps own one side of a stream, so a crashed worker is never restarted:
// the panic is recovered, turned into ErrWorkerPanic and reported.
type Supervisor struct {
	log     *slog.Logger
	onError func(name string, err error)
	wg      sync.WaitGroup
}

// Job is the handle on one running worker.
type Job struct {
	name string
	done chan struct{}
	err  error
}

func NewSupervisor(log *slog.Logger, onError func(name string, err error)) *Supervisor {
	return &Supervisor{log: log, onError: onError}
}

// Start runs worker under supervision.
// A nil return or a cancellation is a clean stop; anything else goes to onError.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) *Job {
	job := &Job{name: contract.GetWorkerName(worker), done: make(chan struct{})}
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(job.done)

		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
				}
			}()
			return worker.Run(ctx)
		}()

		switch {
		case err == nil:
			s.log.Debug(fmt.Sprintf("Worker finished : %s", job.name))
		case errors.IsCancellation(err):
			s.log.Debug("Worker stopped (context canceled)", "name", job.name)
		default:
			job.err = err
			s.log.Warn("Worker failed", "name", job.name, "error", err)
			if s.onError != nil {
				s.onError(job.name, err)
			}
		}
	}()
	return job
}

// Wait blocks until every started worker returned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

func (j *Job) Name() string { return j.name }

// Done is closed once the worker returned.
func (j *Job) Done() <-chan struct{} { return j.done }

// Err is only meaningful after Done is closed.
func (j *Job) Err() error {
	<-j.done
	return j.err
}

// WaitFor waits at most timeout for the worker and reports whether it stopped.
// A timeout <= 0 waits until the worker returns.
func (j *Job) WaitFor(timeout time.Duration) bool {
	if timeout <= 0 {
		<-j.done
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-j.done:
		return true
	case <-timer.C:
		return false
	}
}

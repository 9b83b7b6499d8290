// Package runtime owns the lifecycle of a chat session.
// It coordinates the pumps without containing rendering or wire logic.
package runtime

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/errors"
	"chat-client/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

const (
	defaultGracePeriod     = 2 * time.Second
	defaultErrorBufferSize = 16
)

type SessionConfig struct {
	Mode           domain.InboundMode
	LocalEcho      bool
	ExplicitLogout bool
	// DrainTimeout optionally bounds the wait for the outbound pump and the render consumer.
	// Zero waits until every accepted message is written.
	DrainTimeout time.Duration
	// GracePeriod bounds the wait for the server to close its side after our half-close.
	GracePeriod     time.Duration
	ErrorBufferSize int
	// MetricInterval enables the backlog monitor when positive.
	MetricInterval   time.Duration
	BacklogThreshold int
}

// Session is one connection to the chat service.
// It is not reusable: reconnecting needs a new Session.
type Session struct {
	log      *slog.Logger
	dialer   contract.Dialer
	renderer contract.Renderer
	config   SessionConfig

	mu         sync.Mutex
	state      domain.SessionState
	connecting bool
	identity   domain.Identity
	transport  contract.Transport
	outbound   *workers.Queue[domain.OutgoingMessage]
	pump       workers.OutboundPump
	accepted   int64
	inbound    *workers.Queue[domain.IncomingEvent]

	cancel       context.CancelFunc
	renderCancel context.CancelFunc
	supervisor   *workers.Supervisor
	outboundJob  *workers.Job
	inboundJob   *workers.Job
	renderJob    *workers.Job

	errs         chan error
	shutdownOnce sync.Once
	closed       chan struct{}
}

func NewSession(log *slog.Logger, dialer contract.Dialer, renderer contract.Renderer, config SessionConfig) *Session {
	config.Mode = lo.CoalesceOrEmpty(config.Mode, domain.InboundDirect)
	config.GracePeriod = lo.CoalesceOrEmpty(config.GracePeriod, defaultGracePeriod)
	config.ErrorBufferSize = lo.CoalesceOrEmpty(config.ErrorBufferSize, defaultErrorBufferSize)
	return &Session{
		log:      log,
		dialer:   dialer,
		renderer: renderer,
		config:   config,
		state:    domain.StateNew,
		errs:     make(chan error, config.ErrorBufferSize),
		closed:   make(chan struct{}),
	}
}

// Connect opens the stream and writes Login before any pump exists,
// which is what guarantees Login is the first frame on the wire.
// Every failure wraps ErrConnection and leaves no goroutine behind.
func (s *Session) Connect(ctx context.Context, identity domain.Identity) error {
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("invalid identity: %w", err)
	}

	s.mu.Lock()
	if s.state != domain.StateNew || s.connecting {
		s.mu.Unlock()
		return errors.ErrSessionReused
	}
	s.connecting = true
	s.mu.Unlock()

	// The stream outlives ctx; ctx only bounds the handshake.
	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(ctx, cancel)

	transport, err := s.dialer.Dial(sessionCtx)
	if err != nil {
		stop()
		cancel()
		s.abort()
		return errors.Wrap(errors.ErrConnection, err)
	}
	if err = transport.Send(domain.Login{Identity: identity}); err != nil {
		stop()
		cancel()
		s.release(transport)
		s.abort()
		return errors.Wrap(errors.ErrConnection, err)
	}
	if !stop() {
		s.release(transport)
		s.abort()
		return errors.Wrap(errors.ErrConnection, ctx.Err())
	}

	s.mu.Lock()
	if s.state != domain.StateNew {
		// Disconnect ran while we were dialing.
		s.mu.Unlock()
		cancel()
		s.release(transport)
		return errors.Wrap(errors.ErrConnection, errors.ErrSessionClosed)
	}
	s.identity = identity
	s.transport = transport
	s.cancel = cancel
	s.outbound = workers.NewQueue[domain.OutgoingMessage]()
	s.supervisor = workers.NewSupervisor(s.log, s.report)

	inboundRenderer := s.renderer
	if s.config.Mode == domain.InboundQueued {
		s.inbound = workers.NewQueue[domain.IncomingEvent]()
		renderCtx, renderCancel := context.WithCancel(context.WithoutCancel(ctx))
		s.renderCancel = renderCancel
		s.renderJob = s.supervisor.Start(renderCtx, workers.NewRenderConsumer(s.log, s.inbound, s.renderer))
		inboundRenderer = nil
	}
	s.pump = workers.NewOutboundPump(s.log, transport, s.outbound)
	s.outboundJob = s.supervisor.Start(sessionCtx, s.pump)
	s.inboundJob = s.supervisor.Start(sessionCtx, workers.NewInboundPump(s.log, transport, inboundRenderer, s.inbound))
	if s.config.MetricInterval > 0 {
		s.supervisor.Start(sessionCtx, workers.NewBacklogMonitor(s.log, s.gauges(), s.config.MetricInterval, s.config.BacklogThreshold))
	}
	s.state = domain.StateActive
	s.connecting = false
	s.mu.Unlock()

	s.log.Info("Session active", "user_id", identity.ID, "user_name", identity.Name, "mode", s.config.Mode)
	go s.watchRemoteClose()
	return nil
}

// Send enqueues a chat message and returns without touching the network.
// Blank text is ignored.
func (s *Session) Send(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	s.mu.Lock()
	switch s.state {
	case domain.StateActive:
	case domain.StateNew:
		s.mu.Unlock()
		return errors.ErrNotConnected
	default:
		s.mu.Unlock()
		return errors.ErrSessionClosed
	}
	identity := s.identity
	if err := s.outbound.Push(domain.Chat{SenderID: identity.ID, Text: text}); err != nil {
		s.mu.Unlock()
		return errors.Wrap(errors.ErrSessionClosed, err)
	}
	s.accepted++
	s.mu.Unlock()

	if s.config.LocalEcho {
		s.echo(domain.ChatReceived{FromUserID: identity.ID, FromUserName: identity.Name, Text: text})
	}
	return nil
}

// Disconnect tears the session down and blocks until it is closed.
// It is safe to call any number of times from any goroutine.
func (s *Session) Disconnect() {
	s.shutdownOnce.Do(s.shutdown)
	<-s.closed
}

// Errors delivers pump failures. It is closed once the session is closed.
func (s *Session) Errors() <-chan error {
	return s.errs
}

// Done is closed once the session reached StateClosed.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Identity() domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// shutdown runs Active -> Draining -> HalfClosed -> Drained -> Closed.
// It never fails: every problem is logged and the transport is always released.
func (s *Session) shutdown() {
	defer close(s.closed)
	defer close(s.errs)

	s.mu.Lock()
	if s.state != domain.StateActive {
		s.state = domain.StateClosed
		s.mu.Unlock()
		return
	}
	s.state = domain.StateDraining
	identity := s.identity
	if s.config.ExplicitLogout {
		if err := s.outbound.PushAndClose(domain.Logout{Identity: identity}); err != nil {
			s.log.Debug("Logout not queued", "error", err)
		} else {
			s.accepted++
		}
	}
	s.outbound.Close()
	s.mu.Unlock()
	s.log.Info("Disconnecting...", "user_id", identity.ID)

	s.await(s.outboundJob, s.config.DrainTimeout)
	s.reportDropped()
	if err := s.transport.CloseSend(); err != nil {
		s.log.Warn("Half-close failed", "error", err)
	}
	s.setState(domain.StateHalfClosed)

	s.await(s.inboundJob, s.config.GracePeriod)
	s.setState(domain.StateDrained)

	s.cancel()
	s.release(s.transport)
	if s.inbound != nil {
		s.inbound.Close()
		if !s.renderJob.WaitFor(s.config.DrainTimeout) {
			s.log.Warn("Render consumer did not drain in time, cancelling")
		}
		s.renderCancel()
		<-s.renderJob.Done()
	}
	s.supervisor.Wait()

	s.mu.Lock()
	s.transport = nil
	s.identity = domain.Identity{}
	s.state = domain.StateClosed
	s.mu.Unlock()
	s.log.Info("Session closed", "user_id", identity.ID)
}

// await waits for a pump and raises the cancellation signal when it overstays.
func (s *Session) await(job *workers.Job, timeout time.Duration) {
	if !job.WaitFor(timeout) {
		s.log.Warn("Worker did not stop in time, cancelling", "name", job.Name(), "timeout", timeout)
		s.cancel()
		<-job.Done()
	}
	if err := job.Err(); err != nil {
		s.log.Warn("Worker ended abnormally", "name", job.Name(), "error", err)
	}
}

// watchRemoteClose starts the shutdown when the server ends the stream on its own.
func (s *Session) watchRemoteClose() {
	select {
	case <-s.inboundJob.Done():
		if s.State() == domain.StateActive {
			s.log.Warn("Stream ended by remote, closing session")
			s.Disconnect()
		}
	case <-s.closed:
	}
}

// reportDropped surfaces accepted messages the outbound pump never wrote
// because it was cancelled. A write failure is already reported by the pump.
func (s *Session) reportDropped() {
	if s.outboundJob.Err() != nil {
		return
	}
	s.mu.Lock()
	dropped := s.accepted - s.pump.Written()
	s.mu.Unlock()
	if dropped > 0 {
		s.log.Error("Outbound drain cut short", "dropped", dropped)
		s.report(s.outboundJob.Name(), fmt.Errorf("%w: %d", errors.ErrMessagesDropped, dropped))
	}
}

func (s *Session) gauges() []workers.Gauge {
	gauges := []workers.Gauge{{Name: "outbound", Len: s.outbound.Len}}
	if s.inbound != nil {
		gauges = append(gauges, workers.Gauge{Name: "inbound", Len: s.inbound.Len})
	}
	return gauges
}

func (s *Session) report(name string, err error) {
	select {
	case s.errs <- fmt.Errorf("%s: %w", name, err):
	default:
		s.log.Error("Error channel full, dropping error", "name", name, "error", err)
	}
}

func (s *Session) echo(evt domain.IncomingEvent) {
	if s.inbound == nil {
		s.renderer.OnEvent(evt)
		return
	}
	if err := s.inbound.Push(evt); err != nil {
		s.log.Debug("Local echo dropped", "error", err)
	}
}

func (s *Session) release(transport contract.Transport) {
	if err := transport.Close(); err != nil {
		s.log.Warn("Closing transport failed", "error", err)
	}
}

func (s *Session) abort() {
	s.mu.Lock()
	s.state = domain.StateClosed
	s.connecting = false
	s.mu.Unlock()
	s.shutdownOnce.Do(s.shutdown)
}

func (s *Session) setState(state domain.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shiritori/internal/domain"
)

const inputBufferSize = 64

// Recognizer is the speech-to-text engine driving a session.
// Start while running and Stop while stopped must be no-ops.
type Recognizer interface {
	Start() error
	Stop() error
}

// Analyzer turns transcribed text into morphemes
type Analyzer interface {
	Tokenize(ctx context.Context, text string) ([]domain.Token, error)
}

// Observer receives everything a presentation layer needs to render a session
type Observer interface {
	PhaseChanged(sessionID string, payload *domain.PhaseChangedPayload)
	SessionEnded(sessionID string, payload *domain.SessionEndedPayload)
}

// GameController runs one shiritori session. Recognizer callbacks and timers
// are turned into inputs and processed one at a time by Run.
type GameController struct {
	id         string
	recognizer Recognizer
	analyzer   Analyzer
	observer   Observer
	logger     *slog.Logger

	inputs    chan domain.Input
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// Written only by the Run loop; the mutex guards Snapshot readers
	mu      sync.RWMutex
	session domain.Session

	timer *time.Timer
	ended bool
}

// NewGameController creates a controller for a fresh session
func NewGameController(id string, settings domain.GameSettings, recognizer Recognizer, analyzer Analyzer, observer Observer, logger *slog.Logger) *GameController {
	return &GameController{
		id:         id,
		recognizer: recognizer,
		analyzer:   analyzer,
		observer:   observer,
		logger:     logger.With("sessionID", id),
		inputs:     make(chan domain.Input, inputBufferSize),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		session:    domain.NewSession(id, settings),
	}
}

// ID returns the session ID
func (c *GameController) ID() string {
	return c.id
}

// Snapshot returns a copy of the session data
func (c *GameController) Snapshot() domain.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Clone()
}

// Done is closed once Run has returned
func (c *GameController) Done() <-chan struct{} {
	return c.done
}

// Run resets the session and processes inputs until the game ends, Close is
// called or ctx is cancelled. It must be called exactly once.
func (c *GameController) Run(ctx context.Context) error {
	defer close(c.done)
	defer c.teardown(ctx)

	c.process(ctx, domain.Input{Kind: domain.InputReset})

	for !c.ended {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.quit:
			return nil
		case in := <-c.inputs:
			c.process(ctx, in)
		}
	}

	return nil
}

// Close tears the session down. It is safe to call more than once.
func (c *GameController) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
	})
}

// OnResult forwards a recognition result
func (c *GameController) OnResult(text string, isFinal bool) {
	if isFinal {
		c.post(domain.Input{Kind: domain.InputFinal, Text: text})
		return
	}
	c.post(domain.Input{Kind: domain.InputInterim})
}

// OnEnd forwards the recognizer's end-of-stream
func (c *GameController) OnEnd() {
	c.post(domain.Input{Kind: domain.InputRecognizerEnded})
}

// OnError forwards a recognizer fault, which ends the session
func (c *GameController) OnError(err error) {
	c.post(domain.Input{Kind: domain.InputRecognizerFailed, Err: fmt.Errorf("%w: %v", domain.ErrRecognizerFault, err)})
}

// post queues an input for the Run loop, dropping it once the session is over
func (c *GameController) post(in domain.Input) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.inputs <- in:
	case <-c.done:
	case <-c.quit:
	}
}

// process feeds an input through the state machine and runs the resulting
// effects. Effects that produce new inputs (analysis, recognizer failures)
// are handled before returning so a round is never interleaved with another.
func (c *GameController) process(ctx context.Context, in domain.Input) {
	pending := []domain.Input{in}

	for len(pending) > 0 {
		next := pending[0]
		pending = pending[1:]

		step := domain.Transition(c.current(), next)
		if step.Err != nil {
			c.logger.Error("transition failed", "input", next.Kind, "error", step.Err)
			continue
		}
		if !step.Changed() {
			c.logger.Debug("input ignored", "input", next.Kind, "phase", step.Session.Phase)
			continue
		}

		c.store(step.Session)
		if len(step.Path) > 0 {
			c.logger.Debug("phase changed", "input", next.Kind, "path", step.Path)
		}

		for _, effect := range step.Effects {
			if follow, ok := c.run(ctx, step.Session, effect); ok {
				pending = append(pending, follow)
			}
		}
	}
}

// run performs a single effect and optionally returns a follow-up input
func (c *GameController) run(ctx context.Context, s domain.Session, effect domain.Effect) (domain.Input, bool) {
	switch effect.Kind {
	case domain.EffectStartRecognizer:
		if err := c.recognizer.Start(); err != nil {
			c.logger.Error("failed to start recognizer", "error", err)
			return domain.Input{Kind: domain.InputRecognizerFailed, Err: fmt.Errorf("%w: %v", domain.ErrRecognizerFault, err)}, true
		}

	case domain.EffectStopRecognizer:
		if err := c.recognizer.Stop(); err != nil {
			c.logger.Warn("failed to stop recognizer", "error", err)
		}

	case domain.EffectAnalyze:
		tokens, err := c.analyzer.Tokenize(ctx, effect.Text)
		if ctx.Err() != nil {
			// Run observes the cancellation and tears the session down
			return domain.Input{}, false
		}
		return domain.Input{Kind: domain.InputAnalyzed, Tokens: tokens, Err: err}, true

	case domain.EffectScheduleTimer:
		c.schedule(effect.Delay, effect.Round)

	case domain.EffectCancelTimer:
		c.cancelTimer()

	case domain.EffectNotify:
		c.observer.PhaseChanged(c.id, s.PhaseChanged())

	case domain.EffectEndSession:
		c.finish(s, effect)
	}

	return domain.Input{}, false
}

func (c *GameController) schedule(delay time.Duration, round int) {
	c.cancelTimer()
	c.timer = time.AfterFunc(delay, func() {
		c.post(domain.Input{Kind: domain.InputTimerElapsed, Round: round})
	})
}

func (c *GameController) cancelTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *GameController) finish(s domain.Session, effect domain.Effect) {
	c.ended = true

	payload := &domain.SessionEndedPayload{
		Reason:    effect.Reason,
		UsedWords: s.UsedWords,
		Chain:     len(s.UsedWords) - 1,
	}
	if s.Phase == domain.PhaseResult {
		payload.Outcome = s.LastOutcome
		payload.Message = s.LastOutcome.Message()
	}

	if effect.Reason == domain.EndReasonFatal {
		c.logger.Error("session aborted", "error", effect.Err)
	} else {
		c.logger.Info("session ended", "reason", effect.Reason, "outcome", payload.Outcome, "chain", payload.Chain)
	}

	c.observer.SessionEnded(c.id, payload)
}

// teardown ends a session that did not finish on its own
func (c *GameController) teardown(ctx context.Context) {
	if !c.ended {
		c.process(context.WithoutCancel(ctx), domain.Input{Kind: domain.InputCancel})
	}
	c.cancelTimer()
}

func (c *GameController) current() domain.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *GameController) store(s domain.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

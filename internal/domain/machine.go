package domain

import "time"

// InputKind identifies something that happened to a session
type InputKind string

const (
	InputReset            InputKind = "reset"
	InputInterim          InputKind = "interim"
	InputFinal            InputKind = "final"
	InputAnalyzed         InputKind = "analyzed"
	InputTimerElapsed     InputKind = "timer_elapsed"
	InputRecognizerEnded  InputKind = "recognizer_ended"
	InputRecognizerFailed InputKind = "recognizer_failed"
	InputCancel           InputKind = "cancel"
)

// Input is an event fed to the state machine
type Input struct {
	Kind   InputKind
	Text   string  // InputFinal
	Tokens []Token // InputAnalyzed
	Err    error   // InputAnalyzed, InputRecognizerFailed
	Round  int     // InputTimerElapsed
}

// EffectKind identifies a side effect the caller has to perform
type EffectKind string

const (
	EffectStartRecognizer EffectKind = "start_recognizer"
	EffectStopRecognizer  EffectKind = "stop_recognizer"
	EffectAnalyze         EffectKind = "analyze"
	EffectScheduleTimer   EffectKind = "schedule_timer"
	EffectCancelTimer     EffectKind = "cancel_timer"
	EffectNotify          EffectKind = "notify"
	EffectEndSession      EffectKind = "end_session"
)

// Effect is a side effect requested by a transition, in execution order
type Effect struct {
	Kind   EffectKind
	Text   string        // EffectAnalyze
	Delay  time.Duration // EffectScheduleTimer
	Round  int           // EffectScheduleTimer
	Phase  Phase         // EffectNotify
	Reason EndReason     // EffectEndSession
	Err    error         // EffectEndSession
}

// Step is the result of feeding one input to the machine
type Step struct {
	Session Session
	Effects []Effect
	Path    []Phase // Every phase entered, transient ones included
	Err     error
}

// Changed reports whether the input moved the session at all
func (s Step) Changed() bool {
	return len(s.Path) > 0 || len(s.Effects) > 0
}

// Transition applies in to s and returns the next session with the effects
// to run. It never mutates s. Inputs that make no sense in the current
// phase are ignored.
func Transition(s Session, in Input) Step {
	m := &machine{s: s.Clone()}
	if s.Ended {
		return m.step()
	}

	switch in.Kind {
	case InputReset:
		m.enter(PhaseReset)
	case InputInterim:
		if m.s.Phase == PhaseWait {
			m.enter(PhaseRecord)
		}
	case InputFinal:
		if m.s.Phase.AcceptsSpeech() {
			m.check(in.Text)
		}
	case InputAnalyzed:
		if m.s.Phase == PhaseCheck {
			m.judge(in.Tokens, in.Err)
		}
	case InputTimerElapsed:
		if m.s.Phase == PhaseResult && in.Round == m.s.Round {
			m.finishRound()
		}
	case InputRecognizerEnded:
		// Recognizers stop on their own; only WAIT listens again
		if m.s.Phase == PhaseWait {
			m.emit(Effect{Kind: EffectStartRecognizer})
		}
	case InputRecognizerFailed:
		m.end(EndReasonFatal, in.Err)
	case InputCancel:
		m.end(EndReasonCancelled, nil)
	}

	return m.step()
}

type machine struct {
	s       Session
	effects []Effect
	path    []Phase
	err     error
}

func (m *machine) step() Step {
	return Step{Session: m.s, Effects: m.effects, Path: m.path, Err: m.err}
}

func (m *machine) emit(e Effect) {
	m.effects = append(m.effects, e)
}

// enter moves to next and runs its entry action
func (m *machine) enter(next Phase) {
	if !m.s.Phase.CanTransitionTo(next) {
		m.err = ErrInvalidTransition
		return
	}

	m.s.Phase = next
	m.path = append(m.path, next)

	switch next {
	case PhaseReset:
		m.emit(Effect{Kind: EffectCancelTimer})
		m.s = m.s.reset()
		m.enter(PhaseWait)
	case PhaseWait:
		m.emit(Effect{Kind: EffectStartRecognizer})
		m.notify()
	case PhaseRecord:
		m.notify()
	case PhaseCheck:
		m.emit(Effect{Kind: EffectStopRecognizer})
		m.notify()
	case PhaseResult:
		m.s.Round++
		delay := m.s.Settings.SuccessDelay
		if !m.s.LastOutcome.IsSuccess() {
			delay = m.s.Settings.FailureDelay
		}
		m.emit(Effect{Kind: EffectScheduleTimer, Delay: delay, Round: m.s.Round})
		m.notify()
	case PhaseNext:
		m.s = m.s.commit()
		m.enter(PhaseWait)
	}
}

func (m *machine) notify() {
	if m.s.Phase.IsTransient() {
		return
	}
	m.emit(Effect{Kind: EffectNotify, Phase: m.s.Phase})
}

func (m *machine) check(text string) {
	m.enter(PhaseCheck)
	if m.err == nil {
		m.emit(Effect{Kind: EffectAnalyze, Text: text})
	}
}

// judge normalizes the analyzer output and validates the reading
func (m *machine) judge(tokens []Token, analyzeErr error) {
	if analyzeErr != nil {
		if IsRecoverable(analyzeErr) {
			m.retry()
			return
		}
		m.end(EndReasonFatal, analyzeErr)
		return
	}

	reading, err := Normalize(tokens)
	if err != nil {
		m.retry()
		return
	}
	m.s.PendingCandidate = reading

	err = Validate(m.s.UsedWords, reading)
	if IsRecoverable(err) {
		m.retry()
		return
	}

	outcome, ok := OutcomeFromError(err)
	if !ok {
		m.end(EndReasonFatal, err)
		return
	}

	m.s.LastOutcome = outcome
	m.enter(PhaseResult)
}

// retry returns to WAIT without showing a result
func (m *machine) retry() {
	m.s.PendingCandidate = ""
	m.s.LastOutcome = OutcomeSuccess
	m.enter(PhaseWait)
}

func (m *machine) finishRound() {
	if m.s.LastOutcome.IsSuccess() {
		m.enter(PhaseNext)
		return
	}
	m.end(EndReasonGameOver, nil)
}

func (m *machine) end(reason EndReason, err error) {
	m.s.Ended = true
	m.emit(Effect{Kind: EffectCancelTimer})
	m.emit(Effect{Kind: EffectStopRecognizer})
	m.emit(Effect{Kind: EffectEndSession, Reason: reason, Err: err})
}

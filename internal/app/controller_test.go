package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"shiritori/internal/domain"
)

const waitTimeout = 2 * time.Second

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastSettings() domain.GameSettings {
	return domain.GameSettings{
		StartingWord: domain.DefaultStartingWord,
		SuccessDelay: 10 * time.Millisecond,
		FailureDelay: 20 * time.Millisecond,
	}
}

type harness struct {
	controller *GameController
	recognizer *fakeRecognizer
	analyzer   *fakeAnalyzer
	observer   *fakeObserver
	runErr     chan error
	cancel     context.CancelFunc
}

func startHarness(t *testing.T, settings domain.GameSettings) *harness {
	t.Helper()

	log := &callLog{}
	h := &harness{
		recognizer: &fakeRecognizer{log: log},
		analyzer:   &fakeAnalyzer{log: log, readings: map[string][]domain.Token{}},
		observer:   newFakeObserver(),
		runErr:     make(chan error, 1),
	}
	h.controller = NewGameController("session-1", settings, h.recognizer, h.analyzer, h.observer, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	t.Cleanup(func() {
		cancel()
		h.controller.Close()
		<-h.controller.Done()
	})

	go func() {
		h.runErr <- h.controller.Run(ctx)
	}()

	h.observer.waitPhase(t, domain.PhaseWait)
	return h
}

func (h *harness) waitRun(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.runErr:
		return err
	case <-time.After(waitTimeout):
		t.Fatalf("Run did not return")
		return nil
	}
}

func TestGameControllerAcceptedRound(t *testing.T) {
	t.Parallel()

	h := startHarness(t, fastSettings())
	h.analyzer.set("りす", known("リス"))

	h.controller.OnResult("", false)
	h.observer.waitPhase(t, domain.PhaseRecord)

	h.controller.OnResult("りす", true)
	h.observer.waitPhase(t, domain.PhaseCheck)
	result := h.observer.waitPhase(t, domain.PhaseResult)
	if !result.Success || result.CandidateWord != "りす" || result.PreviousWord != "しりとり" {
		t.Fatalf("unexpected result payload: %+v", result)
	}

	wait := h.observer.waitPhase(t, domain.PhaseWait)
	if wait.PreviousWord != "りす" || wait.UsedCount != 2 {
		t.Fatalf("expected りす committed, got %+v", wait)
	}

	snapshot := h.controller.Snapshot()
	if !slices.Equal(snapshot.UsedWords, []string{"しりとり", "りす"}) {
		t.Fatalf("unexpected used words: %q", snapshot.UsedWords)
	}
	if snapshot.PendingCandidate != "" {
		t.Fatalf("pending candidate not cleared")
	}

	calls := h.recognizer.log.snapshot()
	stopIdx := slices.Index(calls, "stop")
	analyzeIdx := slices.Index(calls, "analyze:りす")
	if stopIdx < 0 || analyzeIdx < 0 || stopIdx > analyzeIdx {
		t.Fatalf("recognizer must stop before analysis: %v", calls)
	}
	if h.recognizer.startCount() != 2 {
		t.Fatalf("expected recognizer started twice, got %d", h.recognizer.startCount())
	}
}

func TestGameControllerRejectedRoundEndsSession(t *testing.T) {
	t.Parallel()

	h := startHarness(t, fastSettings())
	h.analyzer.set("ごはん", known("ゴハン"))

	h.controller.OnResult("ごはん", true)
	result := h.observer.waitPhase(t, domain.PhaseResult)
	if result.Success || result.Outcome != domain.OutcomeEndGame {
		t.Fatalf("expected END_GAME, got %+v", result)
	}
	if result.Message != "「ん」で終わったので負けです" {
		t.Fatalf("unexpected message: %q", result.Message)
	}

	ended := h.observer.waitEnded(t)
	if ended.Reason != domain.EndReasonGameOver || ended.Outcome != domain.OutcomeEndGame {
		t.Fatalf("unexpected end payload: %+v", ended)
	}
	if ended.Chain != 0 {
		t.Fatalf("expected empty chain, got %d", ended.Chain)
	}
	if err := h.waitRun(t); err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
	if h.recognizer.stopCount() == 0 {
		t.Fatalf("recognizer must be stopped")
	}
}

func TestGameControllerFailedRecognitionRetries(t *testing.T) {
	t.Parallel()

	h := startHarness(t, fastSettings())
	h.analyzer.set("えっと", []domain.Token{{Surface: "えっと", Class: domain.TokenUnknown}})

	h.controller.OnResult("えっと", true)
	h.observer.waitPhase(t, domain.PhaseCheck)
	h.observer.waitPhase(t, domain.PhaseWait)

	for _, p := range h.observer.phases() {
		if p.Phase == domain.PhaseResult {
			t.Fatalf("failed recognition must not show a result")
		}
	}

	snapshot := h.controller.Snapshot()
	if snapshot.Phase != domain.PhaseWait || snapshot.PendingCandidate != "" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if len(snapshot.UsedWords) != 1 {
		t.Fatalf("used words changed: %q", snapshot.UsedWords)
	}
}

func TestGameControllerFatalAnalyzerError(t *testing.T) {
	t.Parallel()

	h := startHarness(t, fastSettings())
	h.analyzer.err = errors.New("dictionary crashed")

	h.controller.OnResult("りす", true)

	ended := h.observer.waitEnded(t)
	if ended.Reason != domain.EndReasonFatal {
		t.Fatalf("expected fatal end, got %+v", ended)
	}
	if err := h.waitRun(t); err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
}

func TestGameControllerRecognizerFault(t *testing.T) {
	t.Parallel()

	h := startHarness(t, fastSettings())
	h.controller.OnError(errors.New("microphone unplugged"))

	ended := h.observer.waitEnded(t)
	if ended.Reason != domain.EndReasonFatal {
		t.Fatalf("expected fatal end, got %+v", ended)
	}
}

func TestGameControllerRecognizerEndRestartsOnlyInWait(t *testing.T) {
	t.Parallel()

	h := startHarness(t, domain.GameSettings{SuccessDelay: time.Hour, FailureDelay: time.Hour})
	h.analyzer.set("りす", known("リス"))

	h.controller.OnEnd()
	h.recognizer.waitStarts(t, 2)

	h.controller.OnResult("りす", true)
	h.observer.waitPhase(t, domain.PhaseResult)

	starts := h.recognizer.startCount()
	h.controller.OnEnd()
	h.controller.OnResult("", false)

	// Interim results are ignored in RESULT; flush the loop with a snapshot poll
	deadline := time.Now().Add(50 * time.Millisecond)
	for time.Now().Before(deadline) {
		if h.controller.Snapshot().Phase != domain.PhaseResult {
			t.Fatalf("phase left RESULT")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if h.recognizer.startCount() != starts {
		t.Fatalf("recognizer restarted outside WAIT")
	}
}

func TestGameControllerCloseCancelsPendingTimer(t *testing.T) {
	t.Parallel()

	settings := fastSettings()
	settings.SuccessDelay = 50 * time.Millisecond
	h := startHarness(t, settings)
	h.analyzer.set("りす", known("リス"))

	h.controller.OnResult("りす", true)
	h.observer.waitPhase(t, domain.PhaseResult)

	h.controller.Close()
	ended := h.observer.waitEnded(t)
	if ended.Reason != domain.EndReasonCancelled {
		t.Fatalf("expected cancelled, got %+v", ended)
	}
	<-h.controller.Done()

	count := len(h.observer.phases())
	time.Sleep(100 * time.Millisecond)
	if len(h.observer.phases()) != count {
		t.Fatalf("phase changed after teardown")
	}
	if len(h.controller.Snapshot().UsedWords) != 1 {
		t.Fatalf("word committed after teardown")
	}
	if h.recognizer.stopCount() == 0 {
		t.Fatalf("recognizer must be stopped on teardown")
	}
}

func TestGameControllerContextCancel(t *testing.T) {
	t.Parallel()

	h := startHarness(t, fastSettings())
	h.cancel()

	if err := h.waitRun(t); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ended := h.observer.waitEnded(t); ended.Reason != domain.EndReasonCancelled {
		t.Fatalf("expected cancelled, got %+v", ended)
	}
}

func TestGameControllerStartFailureIsFatal(t *testing.T) {
	t.Parallel()

	observer := newFakeObserver()
	recognizer := &fakeRecognizer{log: &callLog{}, startErr: errors.New("permission denied")}
	controller := NewGameController("session-2", fastSettings(), recognizer, &fakeAnalyzer{log: recognizer.log}, observer, testLogger())

	if err := controller.Run(context.Background()); err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
	if ended := observer.waitEnded(t); ended.Reason != domain.EndReasonFatal {
		t.Fatalf("expected fatal, got %+v", ended)
	}
}

func known(reading string) []domain.Token {
	return []domain.Token{{Surface: reading, Reading: reading, Class: domain.TokenKnown}}
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.calls)
}

type fakeRecognizer struct {
	log      *callLog
	startErr error

	mu     sync.Mutex
	starts int
	stops  int
}

func (f *fakeRecognizer) Start() error {
	f.log.add("start")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.starts++
	return nil
}

func (f *fakeRecognizer) Stop() error {
	f.log.add("stop")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeRecognizer) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *fakeRecognizer) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func (f *fakeRecognizer) waitStarts(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if f.startCount() >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected %d recognizer starts, got %d", n, f.startCount())
}

type fakeAnalyzer struct {
	log *callLog
	err error

	mu       sync.Mutex
	readings map[string][]domain.Token
}

func (f *fakeAnalyzer) set(text string, tokens []domain.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings[text] = tokens
}

func (f *fakeAnalyzer) Tokenize(_ context.Context, text string) ([]domain.Token, error) {
	f.log.add("analyze:" + text)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.readings[text], nil
}

type fakeObserver struct {
	mu      sync.Mutex
	history []*domain.PhaseChangedPayload

	phaseCh chan *domain.PhaseChangedPayload
	endCh   chan *domain.SessionEndedPayload
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{
		phaseCh: make(chan *domain.PhaseChangedPayload, 64),
		endCh:   make(chan *domain.SessionEndedPayload, 4),
	}
}

func (f *fakeObserver) PhaseChanged(_ string, payload *domain.PhaseChangedPayload) {
	f.mu.Lock()
	f.history = append(f.history, payload)
	f.mu.Unlock()
	f.phaseCh <- payload
}

func (f *fakeObserver) SessionEnded(_ string, payload *domain.SessionEndedPayload) {
	f.endCh <- payload
}

func (f *fakeObserver) phases() []*domain.PhaseChangedPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.history)
}

// waitPhase consumes phase notifications until phase is seen
func (f *fakeObserver) waitPhase(t *testing.T, phase domain.Phase) *domain.PhaseChangedPayload {
	t.Helper()
	timeout := time.After(waitTimeout)
	for {
		select {
		case p := <-f.phaseCh:
			if p.Phase == phase {
				return p
			}
		case <-timeout:
			t.Fatalf("timed out waiting for phase %s", phase)
			return nil
		}
	}
}

func (f *fakeObserver) waitEnded(t *testing.T) *domain.SessionEndedPayload {
	t.Helper()
	select {
	case p := <-f.endCh:
		return p
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for session end")
		return nil
	}
}

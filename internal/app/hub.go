package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"shiritori/internal/domain"
)

const (
	// DefaultMaxSessions is the default limit of concurrently running games
	DefaultMaxSessions = 64

	// StaleSessionTimeout is how long a game may run before it is cleaned up
	StaleSessionTimeout = 2 * time.Hour

	cleanupInterval = 10 * time.Minute
)

// HubConfig holds the parameters shared by every session of a hub
type HubConfig struct {
	Settings     domain.GameSettings
	MaxSessions  int
	StaleTimeout time.Duration
}

// GameHub manages all active game sessions. Each session is an independent
// single-player game bound to one recognizer.
type GameHub struct {
	sessions map[string]*GameController
	mu       sync.RWMutex
	cfg      HubConfig
	analyzer Analyzer
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

// NewGameHub creates a new game hub
func NewGameHub(cfg HubConfig, analyzer Analyzer, logger *slog.Logger) *GameHub {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.StaleTimeout <= 0 {
		cfg.StaleTimeout = StaleSessionTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := &GameHub{
		sessions: make(map[string]*GameController),
		cfg:      cfg,
		analyzer: analyzer,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	// Start cleanup goroutine
	go hub.cleanupLoop()

	return hub
}

// StartSession creates a session bound to recognizer and observer and runs it
func (h *GameHub) StartSession(recognizer Recognizer, observer Observer) (*GameController, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx.Err() != nil {
		return nil, domain.ErrSessionClosed
	}
	if h.countRunning() >= h.cfg.MaxSessions {
		return nil, domain.ErrTooManySessions
	}

	id := uuid.New().String()
	controller := NewGameController(id, resolveSettings(h.cfg.Settings), recognizer, h.analyzer, observer, h.logger)
	h.sessions[id] = controller

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.remove(id)
		if err := controller.Run(h.ctx); err != nil {
			h.logger.Debug("session stopped", "sessionID", id, "error", err)
		}
	}()

	h.logger.Info("session started", "sessionID", id)

	return controller, nil
}

// GetSession returns a running session by ID
func (h *GameHub) GetSession(id string) (*GameController, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	controller, ok := h.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	return controller, nil
}

// EndSession tears a session down; its Run loop removes it from the hub
func (h *GameHub) EndSession(id string) error {
	controller, err := h.GetSession(id)
	if err != nil {
		return err
	}
	controller.Close()
	return nil
}

// GetSessionCount returns the number of active sessions
func (h *GameHub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetTotalChainLength returns the number of words accepted across active sessions
func (h *GameHub) GetTotalChainLength() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, controller := range h.sessions {
		if n := len(controller.Snapshot().UsedWords) - 1; n > 0 {
			total += n
		}
	}
	return total
}

// Close shuts down the hub and waits for all sessions to tear down
func (h *GameHub) Close() {
	select {
	case <-h.done:
		return // Already closed
	default:
		close(h.done)
	}

	h.mu.Lock()
	h.cancel()
	h.mu.Unlock()

	h.wg.Wait()
}

// countRunning counts sessions whose Run loop has not returned yet.
// Callers must hold h.mu.
func (h *GameHub) countRunning() int {
	n := 0
	for _, controller := range h.sessions {
		select {
		case <-controller.Done():
		default:
			n++
		}
	}
	return n
}

func (h *GameHub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[id]; ok {
		delete(h.sessions, id)
		h.logger.Info("session removed", "sessionID", id)
	}
}

// cleanupLoop periodically cleans up stale sessions
func (h *GameHub) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleSessions(time.Now())
		}
	}
}

// cleanupStaleSessions closes sessions that have been running for too long
func (h *GameHub) cleanupStaleSessions(now time.Time) int {
	h.mu.RLock()
	stale := make([]*GameController, 0)
	for _, controller := range h.sessions {
		if now.Sub(controller.Snapshot().CreatedAt) > h.cfg.StaleTimeout {
			stale = append(stale, controller)
		}
	}
	h.mu.RUnlock()

	for _, controller := range stale {
		controller.Close()
		h.logger.Info("stale session cleaned up", "sessionID", controller.ID())
	}

	return len(stale)
}

package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaminalder/codex-connect-four/internal/domain"
)

// Errors exposed by the service layer.
var ErrNotFound = errors.New("game not found")

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	Game    *domain.Game
	Created time.Time
	Updated time.Time
}

// Status returns the line shown above the board.
func (gs GameState) Status() string {
	switch gs.Game.Phase() {
	case domain.Won:
		w, _ := gs.Game.Winner()
		return "Game Over - " + w.String() + " Wins!"
	case domain.Draw:
		return "Game Over - Tie!"
	default:
		return gs.Game.Current().String() + "'s Turn"
	}
}

// snapshot copies gs deeply enough that callers never share the live board.
func (gs *GameState) snapshot() GameState {
	cp := *gs
	cp.Game = gs.Game.Clone()
	return cp
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games and subscribers. It is the only place engines are
// mutated, and every mutation happens under mu.
type Service struct {
	mu     sync.Mutex
	width  int
	height int
	games  map[string]*GameState
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	now    func() time.Time
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService(width, height int) *Service {
	return NewServiceWithRenderer(width, height, func(gs GameState) []byte { return nil })
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(width, height int, renderer func(GameState) []byte) *Service {
	if renderer == nil {
		renderer = func(gs GameState) []byte { return nil }
	}
	return &Service{
		width:  width,
		height: height,
		games:  make(map[string]*GameState),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: renderer,
		now:    time.Now,
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(gs GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
	g, err := domain.NewGame(s.width, s.height)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := s.now()
	gs := &GameState{ID: id, Game: g, Created: now, Updated: now}
	s.games[id] = gs
	log.Printf("[GAME] Created game %s (%dx%d)", id, s.width, s.height)
	cp := gs.snapshot()
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := gs.snapshot()
	return &cp, true
}

// Drop plays the current player's piece into col and broadcasts the new state.
// Rejected moves leave the game untouched and are not broadcast.
func (s *Service) Drop(id string, col int) (*GameState, domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, domain.Outcome{}, ErrNotFound
	}
	out, err := gs.Game.Drop(col)
	if err != nil {
		cp := gs.snapshot()
		return &cp, domain.Outcome{}, err
	}
	gs.Updated = s.now()
	if gs.Game.Over() {
		log.Printf("[GAME] Game %s finished after %d moves: %s", id, gs.Game.Moves(), gs.Status())
	}
	cp := s.publishLocked(gs)
	return &cp, out, nil
}

// Reset starts a new round in an existing game, keeping its ID and subscribers.
func (s *Service) Reset(id string) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	g, err := domain.NewGame(gs.Game.Width(), gs.Game.Height())
	if err != nil {
		return nil, err
	}
	gs.Game = g
	gs.Updated = s.now()
	cp := s.publishLocked(gs)
	return &cp, nil
}

// publishLocked renders gs and fans the payload out without blocking.
// Slow subscribers are closed and dropped rather than holding up the mover.
func (s *Service) publishLocked(gs *GameState) GameState {
	cp := gs.snapshot()
	payload := s.render(cp)
	set := s.subs[gs.ID]
	for sub := range set {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			delete(set, sub)
		}
	}
	return cp
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
// Subscribing to an unknown game yields an already closed channel.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &subscriber{ch: make(chan []byte, 1)}
	if _, ok := s.games[id]; !ok {
		sub.close()
		return sub.ch, func() {}
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	set[sub] = struct{}{}

	done := make(chan struct{})
	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			close(done)
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			unsub()
		case <-done:
		}
	}()
	return sub.ch, unsub
}

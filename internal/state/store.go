package state

import (
	"fmt"
	"sync"
)

type StateStore interface {
	GetGameState(gameId string) (*GameState, error)
	SetGameState(gameId string, gs *GameState)
	RemoveGameState(gameId string)
	// LoadOrStoreGameState returns the existing state for gameId, or stores
	// the one built by create. loaded reports which happened.
	LoadOrStoreGameState(gameId string, create func() *GameState) (gs *GameState, loaded bool)
}

type InMemoryGameStateStore struct {
	store map[string]*GameState
	mut   *sync.RWMutex
}

func NewInMemoryGameStore() *InMemoryGameStateStore {
	return &InMemoryGameStateStore{store: make(map[string]*GameState), mut: &sync.RWMutex{}}
}

func (i InMemoryGameStateStore) GetGameState(gameId string) (*GameState, error) {
	i.mut.RLock()
	defer i.mut.RUnlock()
	state, exists := i.store[gameId]
	if !exists {
		return nil, fmt.Errorf("No state found for this game Id %s", gameId)
	}
	return state, nil
}

func (i InMemoryGameStateStore) SetGameState(gameId string, state *GameState) {
	i.mut.Lock()
	defer i.mut.Unlock()
	i.store[gameId] = state
}

func (i InMemoryGameStateStore) RemoveGameState(gameId string) {
	i.mut.Lock()
	defer i.mut.Unlock()
	delete(i.store, gameId)
}

func (i InMemoryGameStateStore) LoadOrStoreGameState(gameId string, create func() *GameState) (*GameState, bool) {
	i.mut.Lock()
	defer i.mut.Unlock()
	if state, exists := i.store[gameId]; exists {
		return state, true
	}
	state := create()
	i.store[gameId] = state
	return state, false
}

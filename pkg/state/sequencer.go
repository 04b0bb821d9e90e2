package state

import "sync"

// Sequencer hands out monotonically increasing tokens per key. A response is
// only allowed to write state while its token is still the latest one issued
// for its key. The zero value is ready to use.
type Sequencer struct {
	mu     sync.Mutex
	tokens map[string]uint64
}

// NewSequencer returns an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{tokens: map[string]uint64{}}
}

// Begin issues the next token for key.
func (s *Sequencer) Begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		s.tokens = map[string]uint64{}
	}
	s.tokens[key]++
	return s.tokens[key]
}

// Current reports whether token is still the most recent one issued for key.
func (s *Sequencer) Current(key string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token != 0 && s.tokens[key] == token
}

// Latest returns the last token issued for key, or zero.
func (s *Sequencer) Latest(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[key]
}

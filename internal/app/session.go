package app

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ayusman/heroswap/internal/swapper"
)

// Session holds the face extracted from the user's last successful upload so
// it can be reapplied when the scene is rebuilt.
type Session struct {
	ID uuid.UUID

	mu   sync.RWMutex
	crop *swapper.Crop
}

// NewSession creates an empty session with a random id.
func NewSession() *Session {
	return &Session{ID: uuid.New()}
}

// Crop returns the current face crop, or nil.
func (s *Session) Crop() *swapper.Crop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.crop
}

// SetCrop replaces the current face crop.
func (s *Session) SetCrop(c *swapper.Crop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crop = c
}

// Clear forgets the current face.
func (s *Session) Clear() {
	s.SetCrop(nil)
}

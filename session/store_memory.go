package session

import "sync"

// MemoryStore is a thread-safe in-memory Store. The credential is lost when
// the process exits.
type MemoryStore struct {
	mu   sync.RWMutex
	cred Credential
	set  bool
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return Credential{}, false
	}
	return s.cred, true
}

func (s *MemoryStore) Set(cred Credential) error {
	s.mu.Lock()
	s.cred = cred
	s.set = true
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.cred = Credential{}
	s.set = false
	s.mu.Unlock()
	return nil
}

package blogclient

import "sync"

// CredentialStore holds the bearer token between calls. Logging out only
// clears it; tokens are not revocable server-side.
type CredentialStore interface {
	Get() string
	Set(token string)
	Clear()
}

type MemoryCredentials struct {
	mu    sync.RWMutex
	token string
}

func (m *MemoryCredentials) Get() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryCredentials) Set(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

func (m *MemoryCredentials) Clear() { m.Set("") }

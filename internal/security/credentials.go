// Package security provides credential storage, secret redaction for logs
// and audit trails, rate limiting, payload validation and subprocess
// environment sanitization.
package security

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"sync"
)

// ErrUnknownCredential is returned when a reference names no stored credential.
var ErrUnknownCredential = errors.New("unknown credential")

// credentialRef matches ${cred:NAME} placeholders.
var credentialRef = regexp.MustCompile(`\$\{cred:([A-Za-z0-9_.\-]+)\}`)

// CredentialStore is a thread-safe store for sensitive credentials such as
// database passwords. Connection strings reference them as ${cred:NAME} so
// the secret never appears in plans, history or logs.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]string
}

// NewCredentialStore creates an empty credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		creds: make(map[string]string),
	}
}

// LoadEnv copies the named environment variables into the store. Missing
// variables are skipped and returned so the caller can warn about them.
func (s *CredentialStore) LoadEnv(names ...string) (missing []string) {
	for _, name := range names {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			missing = append(missing, name)
			continue
		}
		s.Set(name, v)
	}
	return missing
}

// Set stores a credential, overwriting any previous value.
func (s *CredentialStore) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[name] = value
}

// Get returns the credential value and whether it exists.
func (s *CredentialStore) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.creds[name]
	return v, ok
}

// Names returns a sorted list of all credential names.
func (s *CredentialStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.creds))
	for name := range s.creds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Values returns all non-empty credential values in no particular order.
// It feeds Redactor.SyncCredentials.
func (s *CredentialStore) Values() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make([]string, 0, len(s.creds))
	for _, v := range s.creds {
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}

// Len returns the number of stored credentials.
func (s *CredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.creds)
}

// Expand replaces every ${cred:NAME} reference in text with the stored
// value. All unknown names are reported together.
func (s *CredentialStore) Expand(text string) (string, error) {
	var errs []error
	out := credentialRef.ReplaceAllStringFunc(text, func(m string) string {
		name := credentialRef.FindStringSubmatch(m)[1]
		v, ok := s.Get(name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownCredential, name))
			return m
		}
		return v
	})
	return out, errors.Join(errs...)
}

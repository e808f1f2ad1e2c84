package securitytest

import (
	"github.com/flemzord/toolclaw/internal/security"
)

// NewTestRedactor creates a Redactor with no patterns, so test strings that
// look like secrets survive untouched.
func NewTestRedactor() *security.Redactor {
	return &security.Redactor{}
}

// NewTestCredentialStore creates a CredentialStore pre-populated with
// the given key-value pairs. Panics if an odd number of args is provided.
func NewTestCredentialStore(kvs ...string) *security.CredentialStore {
	if len(kvs)%2 != 0 {
		panic("securitytest: NewTestCredentialStore requires even number of args (key, value pairs)")
	}
	store := security.NewCredentialStore()
	for i := 0; i < len(kvs); i += 2 {
		store.Set(kvs[i], kvs[i+1])
	}
	return store
}

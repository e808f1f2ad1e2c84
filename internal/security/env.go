package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sensitiveEnvPrefixes are stripped from sandbox worker environments.
var sensitiveEnvPrefixes = []string{
	"OPENAI_",
	"ANTHROPIC_",
	"AWS_SECRET",
	"AWS_SESSION_TOKEN",
	"GITHUB_TOKEN",
	"GH_TOKEN",
	"GITLAB_TOKEN",
	"TOOLCLAW_SECRET",
	"TOOLCLAW_DB_",
	"TOOLCLAW_GATEWAY_TOKEN",
	"OTEL_EXPORTER_OTLP_HEADERS",
}

// sensitiveEnvExact are stripped by exact name only so that neighbours such
// as DB_PORT or PGHOST survive.
var sensitiveEnvExact = map[string]struct{}{
	"AWS_SECRET_ACCESS_KEY": {},
	"DATABASE_URL":          {},
	"DB_PASSWORD":           {},
	"PGPASSWORD":            {},
	"MYSQL_PWD":             {},
	"REDIS_PASSWORD":        {},
}

// minRedactedSecretLen keeps short credential values like "true" from
// mangling unrelated variables.
const minRedactedSecretLen = 8

// SanitizedEnv returns os.Environ() without sensitive variables.
func SanitizedEnv(store *CredentialStore) []string {
	return SanitizeEnv(os.Environ(), store)
}

// SanitizeEnv filters env (KEY=VALUE entries): sensitive names are dropped
// and credential values from store are redacted from what remains.
func SanitizeEnv(env []string, store *CredentialStore) []string {
	result := make([]string, 0, len(env))

	var secrets []string
	if store != nil {
		for _, s := range store.Values() {
			if len(s) >= minRedactedSecretLen {
				secrets = append(secrets, s)
			}
		}
	}

	for _, entry := range env {
		key, _, ok := strings.Cut(entry, "=")
		if !ok || isSensitiveEnvVar(key) {
			continue
		}
		for _, secret := range secrets {
			entry = strings.ReplaceAll(entry, secret, RedactPlaceholder)
		}
		result = append(result, entry)
	}
	return result
}

func isSensitiveEnvVar(name string) bool {
	upper := strings.ToUpper(name)
	if _, ok := sensitiveEnvExact[upper]; ok {
		return true
	}
	for _, prefix := range sensitiveEnvPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// ErrRestrictedPath is returned for paths under /proc, /sys or /dev.
var ErrRestrictedPath = errors.New("access to restricted path is not allowed")

// ValidatePath rejects paths that resolve into /proc, /sys or /dev. The
// path is made absolute and symlinks are followed (best-effort) first so a
// link cannot smuggle a pseudo-filesystem past the check.
func ValidatePath(path string) error {
	cleaned := filepath.Clean(path)
	if abs, err := filepath.Abs(cleaned); err == nil {
		cleaned = abs
	}
	if resolved, err := filepath.EvalSymlinks(cleaned); err == nil {
		cleaned = resolved
	}
	normalized := strings.ToLower(cleaned)

	for _, root := range []string{"/proc", "/sys", "/dev"} {
		if normalized == root || strings.HasPrefix(normalized, root+"/") {
			return fmt.Errorf("%w: %s", ErrRestrictedPath, path)
		}
	}
	return nil
}

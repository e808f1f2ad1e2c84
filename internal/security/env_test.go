package security

import (
	"errors"
	"slices"
	"testing"
)

func TestIsSensitiveEnvVar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		sensitive bool
	}{
		{"OPENAI_API_KEY", true},
		{"openai_api_key", true},
		{"AWS_SECRET_ACCESS_KEY", true},
		{"GITHUB_TOKEN", true},
		{"Github_Token", true},
		{"DATABASE_URL", true},
		{"PGPASSWORD", true},
		{"MYSQL_PWD", true},
		{"TOOLCLAW_DB_PASSWORD", true},
		{"TOOLCLAW_GATEWAY_TOKEN", true},
		{"DATABASE_HOST", false},
		{"PGHOST", false},
		{"DB_PORT", false},
		{"TOOLCLAW_CONFIG", false},
		{"HOME", false},
		{"PATH", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isSensitiveEnvVar(tt.name); got != tt.sensitive {
				t.Errorf("isSensitiveEnvVar(%q) = %v, want %v", tt.name, got, tt.sensitive)
			}
		})
	}
}

func TestSanitizeEnv(t *testing.T) {
	t.Parallel()

	store := NewCredentialStore()
	store.Set("long", "super-secret-123")
	store.Set("short", "yes")

	env := []string{
		"HOME=/home/app",
		"PGPASSWORD=hunter22",
		"NOTE=uses super-secret-123 inline",
		"FLAG=yes",
		"garbage",
	}

	got := SanitizeEnv(env, store)
	want := []string{
		"HOME=/home/app",
		"NOTE=uses " + RedactPlaceholder + " inline",
		"FLAG=yes",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("SanitizeEnv = %v, want %v", got, want)
	}
}

func TestSanitizedEnv_ExcludesSensitive(t *testing.T) {
	t.Setenv("TOOLCLAW_DB_PASSWORD", "from-env")
	t.Setenv("TOOLCLAW_VISIBLE", "1")

	env := SanitizedEnv(nil)
	if slices.Contains(env, "TOOLCLAW_DB_PASSWORD=from-env") {
		t.Error("sensitive variable leaked into sanitized env")
	}
	if !slices.Contains(env, "TOOLCLAW_VISIBLE=1") {
		t.Error("ordinary variable missing from sanitized env")
	}
}

func TestValidatePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		wantErr bool
	}{
		{"/proc/self/environ", true},
		{"/proc", true},
		{"/sys/kernel", true},
		{"/dev/sda", true},
		{"/home/user/file.txt", false},
		{"/tmp/data", false},
		{"/process/notes.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			err := ValidatePath(tt.path)
			if tt.wantErr && !errors.Is(err, ErrRestrictedPath) {
				t.Errorf("ValidatePath(%q) = %v, want ErrRestrictedPath", tt.path, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidatePath(%q) = %v, want nil", tt.path, err)
			}
		})
	}
}

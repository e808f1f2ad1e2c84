package fileeditor

import (
	"fmt"
	"strings"
)

const defaultMaxFileSize = 1 << 20

var defaultExtensions = []string{
	".txt", ".py", ".js", ".html", ".css", ".json", ".xml", ".csv",
	".md", ".yml", ".yaml", ".toml", ".ini", ".cfg", ".log", ".star",
}

var defaultForbidden = []string{"/etc", "/usr", "/bin", "/sbin", "/var", "/root"}

// Config holds the file editor module configuration.
type Config struct {
	Enabled *bool `yaml:"enabled"`

	// MaxFileSize is the largest file read or written, in bytes. Defaults to 1 MiB.
	MaxFileSize int64 `yaml:"max_file_size"`

	// AllowedExtensions restricts the files that may be read or written.
	// An explicit empty list allows every extension.
	AllowedExtensions *[]string `yaml:"allowed_extensions"`

	// BackupEnabled copies a file before write and delete. Defaults to true.
	BackupEnabled *bool `yaml:"backup_enabled"`

	// Roots are extra directories the editor may touch, in addition to the
	// workspace and the temp directory.
	Roots []string `yaml:"roots"`
}

func (c *Config) defaults() {
	if c.Enabled == nil {
		t := true
		c.Enabled = &t
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = defaultMaxFileSize
	}
	if c.AllowedExtensions == nil {
		exts := append([]string(nil), defaultExtensions...)
		c.AllowedExtensions = &exts
	}
	if c.BackupEnabled == nil {
		t := true
		c.BackupEnabled = &t
	}
}

func (c *Config) validate() error {
	if c.MaxFileSize < 0 {
		return fmt.Errorf("tool.file_editor: max_file_size must be positive, got %d", c.MaxFileSize)
	}
	for _, ext := range *c.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("tool.file_editor: extension %q must start with a dot", ext)
		}
	}
	return nil
}

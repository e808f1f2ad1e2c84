package sandbox

import (
	"fmt"
	"strings"
	"time"
)

// Limits applied when a Request leaves them unset.
const (
	MaxCodeLength    = 50000
	DefaultMaxOutput = 10000
	DefaultTimeout   = 30 * time.Second
	DefaultMaxSteps  = 50_000_000
)

// deniedPatterns are matched case-insensitively anywhere in the code. The
// language has no such primitives; the screen turns attempts into an
// explicit rejection instead of a confusing runtime error.
var deniedPatterns = []string{
	"import os",
	"import subprocess",
	"import shutil",
	"import socket",
	"from os",
	"from subprocess",
	"from shutil",
	"from socket",
	"__import__",
	"eval(",
	"exec(",
	"compile(",
	"open(",
	"file(",
	"input(",
	"raw_input(",
}

// CheckCode screens code before it is parsed. The error names the
// offending pattern without echoing the code.
func CheckCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: code is empty", ErrRejected)
	}
	if len(code) > MaxCodeLength {
		return fmt.Errorf("%w: code is %d bytes, limit is %d", ErrRejected, len(code), MaxCodeLength)
	}
	lower := strings.ToLower(code)
	for _, p := range deniedPatterns {
		if strings.Contains(lower, p) {
			return fmt.Errorf("%w: forbidden pattern %q", ErrRejected, p)
		}
	}
	return nil
}

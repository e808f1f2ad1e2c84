// Package query screens SQL for read-only use and renders result sets as
// bounded text tables. Nothing here knows which database sits behind the
// Driver.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrRejected marks a query refused by Check.
var ErrRejected = errors.New("query rejected")

// forbiddenKeywords are matched as case-insensitive substrings anywhere
// in the query. Longer keywords come first so the reason names the most
// specific match.
var forbiddenKeywords = []string{
	"insert", "update", "delete", "drop", "create", "alter", "truncate",
	"grant", "revoke", "commit", "rollback", "execute", "exec",
	"sp_", "xp_", "cmdshell", "bulk", "openrowset", "opendatasource",
}

type injectionPattern struct {
	name string
	re   *regexp.Regexp
}

var injectionPatterns = []injectionPattern{
	{"--", regexp.MustCompile(`--`)},
	{"/*", regexp.MustCompile(`/\*`)},
	{"*/", regexp.MustCompile(`\*/`)},
	{"statement after ;", regexp.MustCompile(`(?s);.*\w`)},
}

// Verdict is the outcome of Check. Reason is empty when Accepted.
type Verdict struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// Err returns nil for an accepted verdict and an ErrRejected wrap otherwise.
func (v Verdict) Err() error {
	if v.Accepted {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRejected, v.Reason)
}

func reject(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// Check classifies sql as an accepted read-only query or a rejection. The
// reason names the offending keyword or pattern, never the query itself.
func Check(sql string) Verdict {
	lower := strings.ToLower(strings.TrimSpace(sql))
	if lower == "" {
		return reject("empty query")
	}

	for _, kw := range forbiddenKeywords {
		if strings.Contains(lower, kw) {
			return reject("forbidden keyword %q", kw)
		}
	}

	if !strings.HasPrefix(lower, "select") {
		return reject("only SELECT queries are allowed")
	}

	for _, p := range injectionPatterns {
		if p.re.MatchString(lower) {
			return reject("forbidden pattern %q", p.name)
		}
	}
	return Verdict{Accepted: true}
}

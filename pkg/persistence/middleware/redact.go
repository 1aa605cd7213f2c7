package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/ports"
)

// Mask replaces redacted text.
const Mask = "***"

// DefaultSecretPatterns match common credentials in error messages, such as
// "token=abc", "password: hunter2" or "Bearer eyJ...".
var DefaultSecretPatterns = []string{
	`(?i)(password|passwd|secret|token|api[_-]?key)\s*[=:]\s*\S+`,
	`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`,
}

type redactMiddleware struct {
	next     ports.RunStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks every match of the
// patterns in the error text of saved run records. Invalid patterns panic.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RunStore) ports.RunStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

// Save stores a masked copy; the caller's record is left untouched.
func (m *redactMiddleware) Save(ctx context.Context, rec *domain.RunRecord) error {
	cloned := *rec
	for _, p := range m.patterns {
		cloned.Error = p.ReplaceAllString(cloned.Error, Mask)
	}
	return m.next.Save(ctx, &cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, runID string) (*domain.RunRecord, error) {
	return m.next.Load(ctx, runID)
}

func (m *redactMiddleware) Delete(ctx context.Context, runID string) error {
	return m.next.Delete(ctx, runID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/scripter/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovered(t *testing.T) {
	assertion := &domain.AssertionError{Message: "x > 0"}
	other := errors.New("boom")

	tests := []struct {
		name  string
		value any
		check func(t *testing.T, err error)
	}{
		{"stop sentinel", domain.ErrStop, func(t *testing.T, err error) {
			assert.Same(t, domain.ErrStop, err)
		}},
		{"stop string", "STOP", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, domain.ErrStop)
		}},
		{"assertion", assertion, func(t *testing.T, err error) {
			assert.Same(t, assertion, err)
		}},
		{"other string", "stop", func(t *testing.T, err error) {
			var pe *domain.PanicError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "stop", pe.Value)
		}},
		{"other error", other, func(t *testing.T, err error) {
			var pe *domain.PanicError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, other, pe.Value)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, domain.Recovered(tt.value))
		})
	}
}

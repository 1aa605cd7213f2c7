//go:build unix

package runner_test

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/aretw0/scripter"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_SignalCancelsRun(t *testing.T) {
	r := runner.New(runner.WithSignals(true))

	rec, err := r.Run(context.Background(), "interrupted", func(env *scripter.Env) error {
		tm := env.Timer(time.Hour, nil)
		if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
			return err
		}
		_, err := env.Await(tm)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RunCanceled, rec.Status)
	assert.Equal(t, 1, rec.Stats.Canceled)
}

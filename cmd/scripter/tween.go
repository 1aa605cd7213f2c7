package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/scripter"
	"github.com/aretw0/scripter/internal/cli"
	"github.com/aretw0/scripter/internal/presentation/tui"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/tween"
	"github.com/spf13/cobra"
)

var tweenCmd = &cobra.Command{
	Use:   "tween",
	Short: "Animate a value and draw it as a progress bar",
	Long:  fmt.Sprintf("Eases a value between two numbers over an animation.\n\nEasings: %s", strings.Join(tween.Names(), ", ")),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetFloat64("from")
		to, _ := cmd.Flags().GetFloat64("to")
		d, _ := cmd.Flags().GetDuration("duration")
		easeName, _ := cmd.Flags().GetString("ease")
		fps, _ := cmd.Flags().GetInt("fps")

		fn, err := tween.Easing(easeName)
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		bar := tui.NewProgress(cmd.OutOrStdout(), easeName)
		r := cli.NewRunner(cli.RunOptions{Output: cmd.OutOrStdout(), FPS: fps, Debug: debugEnabled(cmd)}, logger)
		rec, err := r.Run(cmd.Context(), "tween", func(env *scripter.Env) error {
			a := tween.Run(env, from, to, d, fn, func(v float64) error {
				bar.Update((v-from)/(to-from), v)
				return nil
			})
			_, err := env.Await(a)
			return err
		})
		bar.Done()
		if err != nil {
			return err
		}
		if rec.Status == domain.RunCanceled {
			fmt.Fprintln(cmd.ErrOrStderr(), "canceled")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tweenCmd)

	tweenCmd.Flags().Float64("from", 0, "Start value")
	tweenCmd.Flags().Float64("to", 100, "End value")
	tweenCmd.Flags().Duration("duration", 2*time.Second, "Animation length")
	tweenCmd.Flags().String("ease", "outCubic", "Easing function")
	tweenCmd.Flags().Int("fps", 60, "Frames per second")
}

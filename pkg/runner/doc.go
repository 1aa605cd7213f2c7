/*
Package runner owns the lifecycle of script runs.

For every run the Runner creates a cancellation controller, a Loop (the run's single logical thread) with a real-time scheduler on top of it, and a scripter.Env bound to the configured host tree. It then executes the script on the loop, waits for the handles the script left pending, and records the outcome in a ports.RunStore.

A run is canceled by its context, by SIGINT/SIGTERM when signal handling is enabled, or through Runner.Cancel (as the HTTP control surface does). Cancellation is always posted into the loop, so the controller trips on the run's logical thread.

# Usage

	r := runner.New(
		runner.WithTree(tree),
		runner.WithStore(memory.NewStore()),
		runner.WithSignals(true),
	)

	rec, err := r.Run(ctx, "highlight", func(env *scripter.Env) error {
		f := env.Find(domain.Container("page"), isText, domain.FindOptions{})
		_, err := env.Await(f)
		return err
	})
*/
package runner

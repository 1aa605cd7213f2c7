/*
Package scripter is a cooperative, cancellable concurrency runtime for short-lived scripts that manipulate a host-owned node tree.

A script never runs in parallel with anything else in its run. Timers, animation frames and the batches of a tree traversal are callbacks delivered on a single logical thread, and script code holds that same thread until it awaits a handle.

# Concept

Every run owns one cancellation controller. Tripping it settles every pending handle through its cancellation path: timers call their handler with canceled == true (or reject with domain.ErrTimerCancellation), animations stop delivering frames, and traversals stop before the next node and keep what they already found. Handles created after the trip observe the cancellation before their first suspension point.

The host stays behind ports: the tree is a ports.TreeQuery, time is a ports.Scheduler and the blocking part of Await is a ports.Suspender. The clock adapter provides a real-time scheduler bound to a Loop and a manual one on virtual time.

# Usage

	loop := clock.NewLoop()
	go loop.Run(ctx)

	env, err := scripter.New(
		scripter.WithScheduler(clock.NewRealtime(loop)),
		scripter.WithSuspender(loop),
		scripter.WithTree(tree),
	)
	if err != nil {
		log.Fatal(err)
	}

	<-loop.Go(func() {
		found := env.Find(domain.Container("page"), domain.Match(isText), domain.FindOptions{})
		nodes, _ := env.Await(found)
		env.Print("found", nodes)
	})

Most hosts use pkg/runner instead, which wires the loop, the scheduler, signal handling and run history.
*/
package scripter

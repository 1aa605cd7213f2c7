/*
Package clock provides the host scheduling adapters of the runtime.

A Loop is the single logical thread of a run: queued callbacks execute one at
a time while holding the loop's baton, and script goroutines started with
Loop.Go hold the same baton until they suspend. Realtime schedules delays and
render ticks on the wall clock and delivers them through a Loop. Manual keeps
virtual time that only moves when told to, which makes it the scheduler of
choice for tests and headless hosts.
*/
package clock

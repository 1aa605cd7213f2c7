/*
Package ports defines the driven ports (interfaces) of the scripter runtime.

These interfaces decouple the core from the host application: the document
tree, the scheduling facilities (delays and the render clock) and the store
that keeps run history.

# Key Interfaces

  - TreeQuery: Child enumeration, visibility and liveness of host nodes.
  - Document: Access to the page a script runs against.
  - Scheduler: Delayed callbacks and per-frame callbacks.
  - Suspender: Releases the logical thread while a script waits.
  - RunStore: Persists and lists run records.
  - Locker: Keeps runs of the same script from overlapping across hosts.
*/
package ports

/*
Package domain contains the core types shared by the scripter runtime.

It defines the vocabulary of a script run: opaque node references into the
host tree, traversal roots and options, the states of asynchronous handles,
the error kinds surfaced to scripts and the run records kept by the host.
This package is kept pure and free of I/O, following Hexagonal Architecture
principles.

# Key Entities

  - NodeRef: An opaque, host-owned handle into the document tree.
  - Roots: The starting point of a traversal (a single container or a list).
  - HandleState: The lifecycle of a timer, animation or traversal handle.
  - RunRecord: A summary of one script run, persisted by a RunStore.
*/
package domain

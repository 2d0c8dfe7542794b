/*
Package eventctx tracks the lifecycle of a unit of work (an "event") as it
fans out across nested, possibly asynchronous execution scopes, and delivers
exactly-once, correctly-ordered completion notifications to observers.

# Overview

A root EventContext is created by an inbound collaborator; processing may
create child contexts for nested scopes at any time, concurrently, and even
after the parent's own processing has nominally finished. Each context
exposes three single-shot notification channels:

  - BeforeResponse: terminal outcome, before Response observers see it
  - Response: terminal outcome, independent of descendants
  - Completion: fires only after the entire subtree has completed

Completion propagates bottom-up through a dynamically sized fan-in barrier,
so the root's completion fires strictly after every descendant's, at any
depth and branching factor, regardless of scheduling.

# Basic Usage

	ec, err := eventctx.New("http.listener")
	if err != nil {
	    log.Fatal(err)
	}

	ec.Response().Subscribe(func(res eventctx.Result) {
	    if res.Failed() {
	        log.Println("failed:", res.Err)
	    }
	})
	ec.Completion().Subscribe(func(struct{}) {
	    log.Println("subtree complete, release resources")
	})

	child, _ := ec.NewChild("async.scope")
	go func() {
	    // ... nested work ...
	    child.Success()
	}()

	ec.SuccessWithResult(payload)

# External Completion

A root created with WithExternalCompletion does not complete until the
supplied latch is released, letting an inbound connector tie context
closure to its own acknowledgement:

	latch := notify.NewLatch()
	ec, _ := eventctx.New("jms.source", eventctx.WithExternalCompletion(latch))
	// ... later, once the source has acked ...
	latch.Release()

# Errors

Error invokes the configured ExceptionHandler asynchronously and defers the
response channels until the handler's signal resolves. Terminal calls are
first-write-wins; duplicates are silent no-ops observable via IsTerminated.
*/
package eventctx

package eventctx

import (
	"time"

	"github.com/randalmurphal/eventctx/pkg/eventctx/notify"
	"github.com/randalmurphal/eventctx/pkg/eventctx/observability"
)

// Completion counter: a dynamically sized fan-in barrier.
//
// Each context's pending count starts at 1, the self slot representing the
// context's own outstanding processing. Creating a child increments the
// count; a child's completion firing, or the terminal path releasing the
// self slot, decrements it. The self slot guarantees the count cannot hit
// zero from child completions alone before the context itself is terminal,
// which closes the "last child finishes before the parent even starts"
// race that a fixed-size barrier cannot handle.
//
// Completion fires exactly once, inside the same critical section that
// observes: count == 0, state terminal, and the external latch (if any)
// released. Whichever of those three happens last fires the channel.

// addChild reserves a slot for a newly created child context.
func (ec *EventContext) addChild() error {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.completionFired {
		return ErrContextCompleted
	}
	ec.pending++
	return nil
}

// childCompleted releases the slot held by a completed child subtree.
func (ec *EventContext) childCompleted() {
	ec.mu.Lock()
	ec.pending--
	fire := ec.completableLocked()
	ec.mu.Unlock()
	if fire {
		ec.fireCompletion()
	}
}

// markOwnProcessingDone releases the self slot. Called exactly once, by
// the terminal delivery path.
func (ec *EventContext) markOwnProcessingDone() {
	ec.mu.Lock()
	ec.pending--
	fire := ec.completableLocked()
	ec.mu.Unlock()
	if fire {
		ec.fireCompletion()
	}
}

// watchExternal clears the external gate once the latch is released.
func (ec *EventContext) watchExternal(latch *notify.Latch) {
	<-latch.Done()
	ec.mu.Lock()
	ec.externalPending = false
	fire := ec.completableLocked()
	ec.mu.Unlock()
	if fire {
		ec.fireCompletion()
	}
}

// completableLocked checks the completion condition and, when met, claims
// the single fire. Must be called with mu held. At most one caller ever
// sees true, so two decrementers racing to zero cannot double-fire.
func (ec *EventContext) completableLocked() bool {
	if ec.completionFired || ec.pending != 0 || ec.externalPending || !ec.State().Terminal() {
		return false
	}
	ec.completionFired = true
	return true
}

// fireCompletion fires the completion channel. Runs outside mu: observers
// include the parent's counter decrement, and completion propagates
// bottom-up through those subscriptions.
func (ec *EventContext) fireCompletion() {
	observability.LogCompletion(ec.logger, ec.id, float64(time.Since(ec.createdAt).Milliseconds()))
	ec.completion.Fire(struct{}{})
}

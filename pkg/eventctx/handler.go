package eventctx

// ExceptionHandler translates errors raised while processing a unit of work.
//
// Handle is invoked exactly once per Error call on a context, from a
// dedicated goroutine. The returned channel resolves when handling has
// finished; a non-nil value reports a failure of the handler itself.
// Handlers may block inside Handle or hand back a channel that resolves
// asynchronously from any goroutine.
//
// The handler is externally owned. It is never invoked while any
// context-internal lock is held.
type ExceptionHandler interface {
	Handle(err error, ec *EventContext) <-chan error
}

// ExceptionHandlerFunc adapts a function to the ExceptionHandler interface.
type ExceptionHandlerFunc func(err error, ec *EventContext) <-chan error

// Handle implements ExceptionHandler.
func (f ExceptionHandlerFunc) Handle(err error, ec *EventContext) <-chan error {
	return f(err, ec)
}

// SyncHandler wraps a synchronous handler function.
// The function runs on the goroutine draining the Error call, not on the
// caller of Error.
func SyncHandler(fn func(err error, ec *EventContext) error) ExceptionHandler {
	return ExceptionHandlerFunc(func(err error, ec *EventContext) <-chan error {
		done := make(chan error, 1)
		done <- fn(err, ec)
		close(done)
		return done
	})
}

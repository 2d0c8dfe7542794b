package eventctx_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventctx/pkg/eventctx"
)

var errBoom = errors.New("boom")

func TestError_NoHandler(t *testing.T) {
	ec, err := eventctx.New("loc")
	require.NoError(t, err)

	var got eventctx.Result
	ec.Response().Subscribe(func(res eventctx.Result) { got = res })

	sig := ec.Error(errBoom)
	herr, open := <-sig
	assert.False(t, open)
	assert.NoError(t, herr)

	assert.Equal(t, eventctx.StateFailed, ec.State())
	assert.True(t, got.Failed())
	assert.ErrorIs(t, got.Err, errBoom)
	assert.True(t, ec.Completion().Fired())
}

func TestError_SyncHandler(t *testing.T) {
	var handled error
	handler := eventctx.SyncHandler(func(err error, _ *eventctx.EventContext) error {
		handled = err
		return nil
	})

	ec, err := eventctx.New("loc", eventctx.WithExceptionHandler(handler))
	require.NoError(t, err)

	<-ec.Error(errBoom)

	assert.ErrorIs(t, handled, errBoom)
	assert.True(t, ec.Response().Fired())
}

// Scenario: the handler's deferred signal takes measurable time to resolve;
// the response must not fire until it does.
func TestError_DeferredHandler_DelaysResponse(t *testing.T) {
	release := make(chan struct{})
	handler := eventctx.ExceptionHandlerFunc(func(err error, _ *eventctx.EventContext) <-chan error {
		done := make(chan error)
		go func() {
			<-release
			close(done)
		}()
		return done
	})

	ec, err := eventctx.New("loc", eventctx.WithExceptionHandler(handler))
	require.NoError(t, err)

	sig := ec.Error(errBoom)

	// Terminal state is set immediately; the response waits on the handler.
	assert.Equal(t, eventctx.StateFailed, ec.State())
	time.Sleep(20 * time.Millisecond)
	assert.False(t, ec.BeforeResponse().Fired())
	assert.False(t, ec.Response().Fired())
	assert.False(t, ec.Completion().Fired())

	close(release)
	herr, open := <-sig
	assert.False(t, open)
	assert.NoError(t, herr)

	assert.True(t, ec.BeforeResponse().Fired())
	assert.True(t, ec.Response().Fired())
	waitDone(t, ec.Completion().Done())
}

func TestError_HandlerFailure_Surfaced(t *testing.T) {
	errHandler := errors.New("handler blew up")
	handler := eventctx.SyncHandler(func(error, *eventctx.EventContext) error {
		return errHandler
	})

	ec, err := eventctx.New("loc", eventctx.WithExceptionHandler(handler))
	require.NoError(t, err)

	var got eventctx.Result
	ec.Response().Subscribe(func(res eventctx.Result) { got = res })

	sig := ec.Error(errBoom)
	herr := <-sig
	require.Error(t, herr)

	var hfe *eventctx.HandlerError
	require.ErrorAs(t, herr, &hfe)
	assert.Equal(t, ec.ID(), hfe.ContextID)
	assert.ErrorIs(t, herr, errHandler)

	// The response still carries the original error, not the handler's.
	assert.ErrorIs(t, got.Err, errBoom)
	waitDone(t, ec.Completion().Done())
}

func TestError_HandlerInvokedOnce(t *testing.T) {
	var calls int
	handler := eventctx.SyncHandler(func(error, *eventctx.EventContext) error {
		calls++
		return nil
	})

	ec, err := eventctx.New("loc", eventctx.WithExceptionHandler(handler))
	require.NoError(t, err)

	<-ec.Error(errBoom)
	<-ec.Error(errors.New("another"))

	assert.Equal(t, 1, calls)
}

func TestError_ChildInheritsHandler(t *testing.T) {
	var handledOn string
	handler := eventctx.SyncHandler(func(_ error, ec *eventctx.EventContext) error {
		handledOn = ec.ID()
		return nil
	})

	root, err := eventctx.New("root", eventctx.WithExceptionHandler(handler))
	require.NoError(t, err)
	child, err := root.NewChild("child")
	require.NoError(t, err)

	<-child.Error(errBoom)

	assert.Equal(t, child.ID(), handledOn)
	assert.Equal(t, eventctx.StateFailed, child.State())

	// A failed child still completes cleanly and unblocks the parent.
	root.Success()
	waitDone(t, root.Completion().Done())
}

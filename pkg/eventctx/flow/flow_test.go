package flow_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/eventctx/pkg/eventctx/flow"
)

func TestNamed(t *testing.T) {
	f := flow.Named("orders")
	assert.Equal(t, "orders", f.Name())
}

func TestProcessorError(t *testing.T) {
	cause := errors.New("bad payload")
	err := &flow.ProcessorError{Location: "transform", Err: cause}

	assert.Equal(t, "processor transform: bad payload", err.Error())
	assert.ErrorIs(t, err, cause)

	var pe *flow.ProcessorError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, "transform", pe.Location)
}

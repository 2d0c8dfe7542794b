package eventctx

// State is the lifecycle state of an event context.
// It transitions from Pending to exactly one terminal state.
type State int32

// Context lifecycle states.
const (
	StatePending State = iota
	StateSucceeded
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is a terminal one.
func (s State) Terminal() bool {
	return s != StatePending
}

// Result is the terminal outcome delivered on the before-response and
// response channels. Exactly one of Value and Err is meaningful: Err is
// non-nil for failed contexts.
//
// The completion channel never carries a Result; it signals bookkeeping
// closure of the whole subtree, not business outcome.
type Result struct {
	// Value is the optional result supplied to SuccessWithResult.
	Value any
	// Err is the error supplied to Error, nil on success.
	Err error
}

// Failed reports whether the result represents a failed context.
func (r Result) Failed() bool {
	return r.Err != nil
}

package eventstream

import "errors"

// ErrNilDecisionEvent indicates a nil decision event payload was provided to a publisher.
var ErrNilDecisionEvent = errors.New("nil decision event")

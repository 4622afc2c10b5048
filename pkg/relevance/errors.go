package relevance

import "errors"

// ErrInvalidScore is returned when a raw similarity score is NaN or negative.
// The upstream store contract is cosine similarity in [0, 1]; anything
// outside that is a caller bug, never silently corrected.
var ErrInvalidScore = errors.New("invalid similarity score")

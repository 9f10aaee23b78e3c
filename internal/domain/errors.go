package domain

import "errors"

// Error kinds reported by an invocation. Causes are joined onto a kind so
// errors.Is works on both.
var (
	ErrMalformedEvent = errors.New("malformed event")
	ErrContentFetch   = errors.New("content fetch failed")
	ErrConfiguration  = errors.New("configuration error")
	ErrCompletionAPI  = errors.New("completion API failed")
	ErrPersist        = errors.New("persist failed")
)

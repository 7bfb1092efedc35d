package executor

import "errors"

// Sentinel kinds for failed swaps. Each failure is reported per proposal;
// none of them abort the batch.
var (
	ErrStaleSwap    = errors.New("copy grade changed since proposal")
	ErrCopyReused   = errors.New("copy already consumed by an earlier proposal in this batch")
	ErrMalformed    = errors.New("malformed proposal")
	ErrCopyNotFound = errors.New("copy not found")
	ErrCopyMismatch = errors.New("copies do not share subject and exam model")
)

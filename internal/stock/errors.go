package stock

import "errors"

// Failure taxonomy. Every provider or validation problem is converted to
// one of these at the point of occurrence; nothing panics across the
// package boundary.
var (
	ErrInvalidTicker       = errors.New("invalid ticker")
	ErrNoData              = errors.New("no data available")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrProvider            = errors.New("provider error")
	ErrInvalidApproach     = errors.New("invalid approach")
)

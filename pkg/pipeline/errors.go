package pipeline

import (
	"errors"
	"fmt"
)

// Record-level rejections. Both are recoverable: the record is dropped
// without a warning, since at daily volumes individual rejects are noise.
var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrNonEnglish      = errors.New("non-english content")
)

// GateError is the fatal quality-gate failure. It is the only error that
// propagates out of a run; everything else folds into Result.Warnings.
type GateError struct {
	Total int
	Min   int
}

func (e *GateError) Error() string {
	return fmt.Sprintf("quality gate: only %d trends collected, minimum is %d", e.Total, e.Min)
}

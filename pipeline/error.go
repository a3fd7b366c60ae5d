package pipeline

import (
	"errors"
	"fmt"
)

// RunError is returned if the runner was successfully started, but
// consuming and/or flushing failed.
type RunError struct {
	ErrConsume error
	ErrFlush   error
}

func (e *RunError) Error() string {
	switch {
	case e.ErrConsume != nil && e.ErrFlush != nil:
		return fmt.Sprintf("flush error: %v after consume error: %v", e.ErrFlush, e.ErrConsume)
	case e.ErrConsume != nil:
		return fmt.Sprintf("consume error: %v", e.ErrConsume)
	case e.ErrFlush != nil:
		return fmt.Sprintf("flush error: %v", e.ErrFlush)
	}
	return ""
}

// Is checks if any of the wrapped errors match the provided sentinel.
func (e *RunError) Is(err error) bool {
	if e.ErrConsume != nil && errors.Is(e.ErrConsume, err) {
		return true
	}
	if e.ErrFlush != nil && errors.Is(e.ErrFlush, err) {
		return true
	}
	return false
}

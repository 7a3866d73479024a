package surface

import "fmt"

// invalidArgumentError wraps ErrInvalidArgument with the failing
// operation and the byte counts involved.
type invalidArgumentError struct {
	op   string
	want int
	got  int
}

func (e *invalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %v: buffer is %d bytes, need %d", e.op, ErrInvalidArgument, e.got, e.want)
}

func (e *invalidArgumentError) Unwrap() error { return ErrInvalidArgument }

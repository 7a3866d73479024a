package imgcache

import "fmt"

// DecodeError reports a bitmap file that could not be decoded. The
// drawing surface treats it as "no image" rather than propagating it.
type DecodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decoding %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("decoding %s: %s", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

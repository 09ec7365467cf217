package gateway

import (
	"errors"
	"fmt"
)

// ErrFault marks transport, protocol and decoding failures: the request
// did not produce a well-formed backend answer.
var ErrFault = errors.New("gateway fault")

// BusinessError is a well-formed negative answer from the backend, i.e. a
// response object carrying an "error" key.
type BusinessError struct {
	Reason string
}

func (e *BusinessError) Error() string {
	return e.Reason
}

func fault(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrFault, op, err)
}

// IsFault reports whether err is (or wraps) a gateway fault.
func IsFault(err error) bool {
	return errors.Is(err, ErrFault)
}

// Reason returns the backend-supplied reason when err is a BusinessError.
func Reason(err error) (string, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Reason, true
	}
	return "", false
}

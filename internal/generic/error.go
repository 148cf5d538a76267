package generic

import (
	"errors"
	"io"
)

// ConstError is a string usable as a package-level error sentinel
// without the allocation a fmt.Errorf would cost at every call site.
type ConstError string

func (e ConstError) Error() string { return string(e) }

// CloseWithError closes every closer in order and joins any failures
// onto err, so releasing one owned resource failing doesn't stop the
// rest from being released too. Concat.Close uses this to release its
// owned elements.
func CloseWithError(err error, closers ...io.Closer) error {
	var failures []error
	for _, c := range closers {
		if cErr := c.Close(); cErr != nil {
			failures = append(failures, cErr)
		}
	}
	if failures == nil {
		return err
	}
	return errors.Join(append([]error{err}, failures...)...)
}

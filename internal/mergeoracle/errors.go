package mergeoracle

import "fmt"

// ObjectError reports a failure to read a Git object during ancestry or
// patch-id evaluation, e.g. a missing commit in a shallow clone. Per the
// source's error-handling design, it never promotes a branch to merged;
// the pair is reported as "not merged" and the error is logged.
type ObjectError struct {
	Op  string
	Err error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("read object (%s): %v", e.Op, e.Err)
}

func (e *ObjectError) Unwrap() error { return e.Err }

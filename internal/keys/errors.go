package keys

import "fmt"

// UnknownKeyTypeError reports an unrecognized textual name or numeric tag.
type UnknownKeyTypeError struct {
	Provided string
}

func (e *UnknownKeyTypeError) Error() string {
	return fmt.Sprintf("unknown key type %q", e.Provided)
}

// InvalidLengthError reports a payload that does not match the fixed size
// required by its key type.
type InvalidLengthError struct {
	Expected int
	Received int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("invalid length: expected %d bytes, received %d", e.Expected, e.Received)
}

// InvalidDataError reports a payload of the right length that fails
// structural or cryptographic validation.
type InvalidDataError struct {
	Message string
	Err     error
}

func (e *InvalidDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid data: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("invalid data: %s", e.Message)
}

func (e *InvalidDataError) Unwrap() error {
	return e.Err
}

package errors

import stderrors "errors"

// rejection couples a client-facing message with one of the taxonomy
// sentinels so callers can both display the text and branch on the kind.
type rejection struct {
	msg  string
	kind error
}

func (r rejection) Error() string { return r.msg }
func (r rejection) Unwrap() error { return r.kind }

// Reject builds an error whose Error() is safe to surface to the
// originating session and which matches kind under errors.Is.
func Reject(kind error, msg string) error {
	return rejection{msg: msg, kind: kind}
}

// IsRejection reports whether err carries a client-facing message, as
// opposed to an internal failure that must stay server-side.
func IsRejection(err error) bool {
	var r rejection
	return stderrors.As(err, &r)
}

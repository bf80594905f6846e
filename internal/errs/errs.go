// Package errs defines the error kinds shared across the engine core.
//
// Operations return a tagged error rather than relying on exception-style
// control flow. A caller that only cares about the category should compare
// with errors.Is against the sentinel Err* values; a caller that wants the
// underlying detail can unwrap further.
package errs

// Kind identifies which of the documented error categories a failure
// belongs to.
type Kind int

const (
	KindCorrupt Kind = iota
	KindBadPassword
	KindNotFound
	KindDecoderFormat
	KindResourceExhausted
)

func (k Kind) String() string {
	switch k {
	case KindCorrupt:
		return "corrupt_container"
	case KindBadPassword:
		return "bad_password"
	case KindNotFound:
		return "not_found"
	case KindDecoderFormat:
		return "decoder_format"
	case KindResourceExhausted:
		return "resource_exhausted"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with the engine's error kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Sentinels usable with errors.Is against any *Error of the matching Kind.
var (
	ErrCorrupt           = &Error{Kind: KindCorrupt, Op: "sentinel"}
	ErrBadPassword       = &Error{Kind: KindBadPassword, Op: "sentinel"}
	ErrNotFound          = &Error{Kind: KindNotFound, Op: "sentinel"}
	ErrDecoderFormat     = &Error{Kind: KindDecoderFormat, Op: "sentinel"}
	ErrResourceExhausted = &Error{Kind: KindResourceExhausted, Op: "sentinel"}
)

// Is makes every *Error compare equal to the sentinel of the same Kind,
// regardless of Op/Err, so callers can write errors.Is(err, errs.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

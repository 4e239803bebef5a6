// Package throw is a stand-in for braces.dev/throw
// with the signatures the analyzer looks at.
package throw

type Point struct {
	Line, Column int
	Scope, File  string
}

type Error[E any] struct{ err E }

func (e *Error[E]) Error() string { return "" }

func Raise[E any](v E) *Error[E]                       { return &Error[E]{err: v} }
func RaiseAt[E any](p Point, v E) *Error[E]            { return &Error[E]{err: v} }
func Up[E any](e *Error[E]) *Error[E]                  { return e }
func UpAt[E any](p Point, e *Error[E]) *Error[E]       { return e }
func New(text string) *Error[error]                    { return nil }
func NewAt(p Point, text string) *Error[error]         { return nil }
func Errorf(format string, args ...any) *Error[error] { return nil }
func Convert[E, F any](e *Error[E], fn func(E) F) *Error[F] {
	return &Error[F]{err: fn(e.err)}
}

type Caller struct{}

func GetCaller() Caller     { return Caller{} }
func (Caller) Point() Point { return Point{} }

//go:build ignore

package foo

import (
	"io"

	trace "braces.dev/throw"
)

func Read(r io.Reader) error {
	_, err := io.ReadAll(r)
	return trace.Wrap(err)
}

func Fail() *trace.Error[error] {
	return trace.Up(trace.New("failed"))
}

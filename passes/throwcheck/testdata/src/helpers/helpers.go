package helpers

import (
	"errors"

	"braces.dev/throw"
)

// Fail records its caller's site.
func Fail(msg string) *throw.Error[error] {
	return throw.RaiseAt(throw.GetCaller().Point(), errors.New(msg))
}

func open() *throw.Error[error] {
	return Fail("no such file")
}

func notHelper() *throw.Error[error] {
	return open() // want `traced error returned without recording the call site`
}

package p2

import (
	"errors"

	"braces.dev/throw"
)

// Open always fails.
func Open(name string) (string, *throw.Error[error]) {
	return "", throw.Raise(errors.New("not found: " + name)) // @trace
}

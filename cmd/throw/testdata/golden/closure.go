//go:build ignore

package foo

import (
	"errors"

	"braces.dev/throw"
)

var ErrClosed = throw.New("closed")

var check = func() error {
	return throw.Wrap(ErrClosed)
}

func init() {
	_ = throw.New("first init")
}

func init() {
	_ = throw.New("second init")
}

func Run() error {
	do := func() error {
		return throw.New("great sadness")
	}

	again := func() error {
		inner := func() error {
			return throw.Wrap(errors.New("inner"))
		}
		return throw.Wrap(inner())
	}

	if err := do(); err != nil {
		return throw.Wrap(err)
	}
	return again()
}

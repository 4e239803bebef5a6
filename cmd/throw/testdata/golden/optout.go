//go:build ignore

package foo

import (
	"io"

	"braces.dev/throw"
)

func Read(r io.Reader) error {
	if r == nil {
		return throw.New("no reader")
	}

	_, err := io.ReadAll(r)
	return throw.Wrap(err) //throw:skip // caller compares the error
}

func unused() error {
	return nil //throw:skip
}

//go:build ignore

package foo

import (
	"os"

	"braces.dev/throw"
)

func Open() error {
	return throw.WrapAt(throw.Point{Line: 12, Column: 9, Scope: "example.com/foo.Open", File: "src.go"}, os.ErrNotExist)
}

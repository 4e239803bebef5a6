//go:build ignore

package foo

import (
	"os"

	"braces.dev/throw"
)

func Explicit() *throw.Error[error] {
	return throw.Raise[error](os.ErrNotExist)
}

func ExplicitWrap2() (int, error) {
	return throw.Wrap2[int](len("x"), os.ErrClosed)
}

func ExplicitWrap3() (int, string, error) {
	return throw.Wrap3[int, string](1, "x", os.ErrClosed)
}

//go:build ignore

package foo

import (
	"os"

	. "braces.dev/throw"
)

func Open() error {
	return Wrap(os.ErrNotExist)
}

func Fail() *Error[error] {
	return Up(New("failed"))
}

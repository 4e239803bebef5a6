package tracetest

import (
	"fmt"

	"braces.dev/throw"
)

// Separate file to verify how Clean handles separate files.

func f1() error {
	return throw.Wrap(f2())
}

func f2() error {
	if err := f3(); err != nil {
		return throw.Wrap(fmt.Errorf("f3: %w", err))
	}

	return nil
}

func f3() error {
	return throw.New("err")
}

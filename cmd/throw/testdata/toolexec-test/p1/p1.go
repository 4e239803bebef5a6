package p1

import (
	"fmt"

	"braces.dev/throw"
	"braces.dev/throw/cmd/throw/testdata/toolexec-test/p2"
)

// Load decorates the error from p2 and records the hop.
func Load() error {
	if _, err := p2.Open("config.yaml"); err != nil {
		return throw.Wrap(fmt.Errorf("load: %w", err)) // @trace
	}
	return nil
}

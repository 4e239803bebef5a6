package main

import (
	"fmt"

	"braces.dev/throw"
	"braces.dev/throw/cmd/throw/testdata/toolexec-test/p1"
)

func main() {
	if err := callP1(); err != nil {
		fmt.Printf("%+v\n", err)
	}
}

func callP1() error {
	return throw.Wrap(p1.Load()) // @trace
}

//go:build ignore

package main

import (
	"fmt"

	"braces.dev/throw"
)

func main() {
	fmt.Printf("%+v\n", throw.New("failed"))
}

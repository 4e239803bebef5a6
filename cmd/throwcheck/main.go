// throwcheck reports traced errors returned without recording the call site.
//
// Usage:
//
//	throwcheck [-config throwcheck.yaml] ./...
//
// It can also be run through go vet:
//
//	go vet -vettool=$(which throwcheck) ./...
package main

import (
	"braces.dev/throw/passes/throwcheck"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(throwcheck.Analyzer)
}

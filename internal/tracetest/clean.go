// Package tracetest provides utilities for throw
// to test rendered traces conveniently.
package tracetest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

const _fixedDir = "/path/to/throw"

// _pointMatcher matches a rendered point in a file under the fixedDir.
// Capture groups:
//
//  1. line number
//  2. column number
//  3. scope
//  4. file path
var _pointMatcher = regexp.MustCompile(`at (\d+):(\d+) in (\S+) \((` + regexp.QuoteMeta(_fixedDir) + `[^)]*)\)`)

// MustClean makes traces more deterministic for tests by:
//
//   - replacing the environment-specific path to throw
//     with the fixed path /path/to/throw
//   - replacing line numbers with the lowest values
//     that maintain relative ordering within the file
//
// Note that lines numbers are replaced with increasing values starting at 1,
// with earlier positions in the file getting lower numbers.
// Columns are kept as they are.
func MustClean(trace string) string {
	// Get deterministic file paths first.
	trace = strings.ReplaceAll(trace, getThrowDir(), _fixedDir)

	lines := make(fileLines)
	matches := _pointMatcher.FindAllStringSubmatch(trace, -1)
	for _, m := range matches {
		lines.Add(m[4], mustAtoi(m[0], m[1]))
	}
	renumber := lines.Renumber()

	return _pointMatcher.ReplaceAllStringFunc(trace, func(s string) string {
		m := _pointMatcher.FindStringSubmatch(s)
		line := renumber[m[4]][mustAtoi(m[0], m[1])]
		return fmt.Sprintf("at %d:%s in %s (%s)", line, m[2], m[3], m[4])
	})
}

func mustAtoi(match, s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(fmt.Sprintf("matched bad line number in %q: %v", match, err))
	}
	return n
}

func getThrowDir() string {
	_, file, _, _ := runtime.Caller(0)
	// Note: Assumes specific location of this file in throw, strip internal/tracetest/<file>
	return filepath.ToSlash(filepath.Dir(filepath.Dir(filepath.Dir(file))))
}

// fileLines maintains a mapping from
// file name to line numbers in that file that are referenced.
type fileLines map[string][]int

// Add adds a file:line pair.
func (r fileLines) Add(file string, line int) {
	r[file] = append(r[file], line)
}

// Renumber maps every referenced line of every file
// to its rank among the referenced lines of that file, starting at 1.
func (r fileLines) Renumber() map[string]map[int]int {
	renumber := make(map[string]map[int]int, len(r))
	for file, fileLines := range r {
		sort.Ints(fileLines)
		fileLines = uniq(fileLines)

		m := make(map[int]int, len(fileLines))
		for idx, origLine := range fileLines {
			m[origLine] = idx + 1
		}
		renumber[file] = m
	}
	return renumber
}

// uniq removes contiguous duplicates from v.
// The slice storage is re-used so the original slice
// should not be used after calling this function.
func uniq[T comparable](items []T) []T {
	if len(items) == 0 {
		return items
	}

	newItems := items[:1]
	for _, item := range items[1:] {
		if item != newItems[len(newItems)-1] {
			newItems = append(newItems, item)
		}
	}
	return newItems
}

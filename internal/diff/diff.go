// Package diff renders line diffs for test failures.
package diff

import (
	"fmt"
	"strings"
)

// _context is the number of unchanged lines shown around a change.
const _context = 2

// Lines returns a diff of two strings, line-by-line.
// It returns an empty string if they're equal.
func Lines(want, got string) string {
	return Diff(strings.Split(want, "\n"), strings.Split(got, "\n"))
}

// Diff compares want and got and returns the changes between them,
// with "-" marking items only in want and "+" items only in got.
// It returns an empty string if they're equal.
//
// Items are matched by their longest common subsequence,
// so a line inserted in got shows up as a single "+".
func Diff[T comparable](want, got []T) string {
	ops := edits(want, got)

	changed := make([]bool, len(ops))
	var hasChanges bool
	for i, op := range ops {
		if op.kind != ' ' {
			hasChanges = true
			for j := max(i-_context, 0); j <= min(i+_context, len(ops)-1); j++ {
				changed[j] = true
			}
		}
	}
	if !hasChanges {
		return ""
	}

	var (
		buf     strings.Builder
		skipped bool
	)
	for i, op := range ops {
		if !changed[i] {
			skipped = true
			continue
		}
		if skipped {
			buf.WriteString("  ...\n")
			skipped = false
		}
		fmt.Fprintf(&buf, "%c %v\n", op.kind, op.item)
	}
	return buf.String()
}

type edit[T any] struct {
	kind byte // ' ', '-' or '+'
	item T
}

// edits returns the edit script turning want into got.
func edits[T comparable](want, got []T) []edit[T] {
	// lcs[i][j] is the length of the longest common subsequence
	// of want[i:] and got[j:].
	lcs := make([][]int, len(want)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(got)+1)
	}
	for i := len(want) - 1; i >= 0; i-- {
		for j := len(got) - 1; j >= 0; j-- {
			if want[i] == got[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]edit[T], 0, max(len(want), len(got)))
	i, j := 0, 0
	for i < len(want) && j < len(got) {
		switch {
		case want[i] == got[j]:
			ops = append(ops, edit[T]{' ', want[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, edit[T]{'-', want[i]})
			i++
		default:
			ops = append(ops, edit[T]{'+', got[j]})
			j++
		}
	}
	for ; i < len(want); i++ {
		ops = append(ops, edit[T]{'-', want[i]})
	}
	for ; j < len(got); j++ {
		ops = append(ops, edit[T]{'+', got[j]})
	}
	return ops
}

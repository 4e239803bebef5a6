//go:build ignore

package foo

import (
	"errors"
	"os"
	"strconv"

	"braces.dev/throw"
)

func Open(name string) (*os.File, *throw.Error[error]) {
	f, err := os.Open(name)
	if err != nil {
		return nil, throw.Raise(err)
	}
	return f, nil
}

func Load(name string) *throw.Error[error] {
	f, err := Open(name)
	if err != nil {
		return throw.Up(err)
	}
	defer f.Close()

	return nil
}

func Validate(s string) error {
	if s == "" {
		return throw.New("empty")
	}
	if len(s) > 10 {
		return throw.Errorf("too long: %d", len(s))
	}
	return nil
}

func Parse(s string) (int, error) {
	return throw.Wrap2(strconv.Atoi(s))
}

func Split(s string) (int, int, error) {
	return throw.Wrap3(0, 0, errors.New(s))
}

type Store struct{}

func (s *Store) Get() error {
	return throw.Wrap(os.ErrNotExist)
}

func (s Store) Put() error {
	return throw.Wrap(os.ErrPermission)
}

func First[T any](xs []T) (T, *throw.Error[string]) {
	var zero T
	if len(xs) == 0 {
		return zero, throw.Raise("empty")
	}
	return xs[0], nil
}

type List[E any] struct{ items []E }

func (l *List[E]) Pop() (E, error) {
	var zero E
	if len(l.items) == 0 {
		return zero, throw.New("empty list")
	}
	return l.items[0], nil
}

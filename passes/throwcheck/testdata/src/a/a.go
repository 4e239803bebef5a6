package a

import (
	"errors"
	"strconv"

	"braces.dev/throw"
)

func readConfig() *throw.Error[error] {
	return throw.Raise(errors.New("not found"))
}

func loadGood() *throw.Error[error] {
	return throw.Up(readConfig())
}

func loadBad() *throw.Error[error] {
	return readConfig() // want `traced error returned without recording the call site`
}

func nilReturn() *throw.Error[error] {
	return nil
}

func newAndErrorf(n int) *throw.Error[error] {
	if n > 0 {
		return throw.New("positive")
	}
	return throw.Errorf("bad %d", n)
}

func variableMixed() *throw.Error[error] {
	err := readConfig()
	if err != nil {
		err = throw.Up(err)
	}
	return err // want `traced error returned without recording the call site`
}

func variableRecorded() *throw.Error[error] {
	var err *throw.Error[error]
	if e := readConfig(); e != nil {
		err = throw.Up(e)
	} else {
		err = nil
	}
	return err
}

func parameter(err *throw.Error[error]) *throw.Error[error] {
	return err // want `traced error returned without recording the call site`
}

func tuple(s string) (int, *throw.Error[error]) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, throw.Raise(err)
	}
	return n, nil
}

func tupleForward(s string) (int, *throw.Error[error]) {
	return tuple(s) // want `traced error returned without recording the call site`
}

func tupleBad(s string) (int, *throw.Error[error]) {
	n, err := tuple(s)
	if err != nil {
		return 0, err // want `traced error returned without recording the call site`
	}
	return n, nil
}

func convert() *throw.Error[string] {
	return throw.Convert(throw.Up(readConfig()), func(err error) string { return err.Error() })
}

func convertBad() *throw.Error[string] {
	return throw.Convert(readConfig(), func(err error) string { return err.Error() }) // want `traced error returned without recording the call site`
}

func closure() error {
	f := func() *throw.Error[error] {
		return readConfig() // want `traced error returned without recording the call site`
	}
	return f()
}

func plainError() error {
	return readConfig()
}

func parenthesized() *throw.Error[error] {
	return (throw.Up(readConfig()))
}

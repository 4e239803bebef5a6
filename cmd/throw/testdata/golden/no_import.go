//go:build ignore

package foo

type thrower struct{}

func (thrower) Raise(err error) error { return err }

var throw thrower

func Fail(err error) error {
	return throw.Raise(err)
}

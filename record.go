package throw

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// Record is the serializable form of an [Error].
//
// If E is the error interface, Original is left empty
// and the error travels as its Message;
// it comes back as errors.New(Message).
type Record[E any] struct {
	Original E       `json:"original,omitempty" yaml:"original,omitempty"`
	Message  string  `json:"message" yaml:"message"`
	Context  []Field `json:"context,omitempty" yaml:"context,omitempty"`
	Points   []Point `json:"points" yaml:"points"`
	Dropped  int     `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

// Field is a serialized context attribute.
type Field struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

// errRecordEmpty is returned when restoring a record without points.
var errRecordEmpty = errors.New("throw: record has no points")

// Record returns the serializable form of e.
func (e *Error[E]) Record() Record[E] {
	r := Record[E]{
		Message: e.Error(),
		Points:  e.Points(),
		Dropped: e.Dropped(),
	}
	if !isErrorType[E]() {
		r.Original = e.err
	}
	for _, attr := range e.context {
		r.Context = append(r.Context, Field{Key: attr.Key, Value: attr.Value.Any()})
	}
	return r
}

// Restore rebuilds the Error described by r.
// It fails if r has no points: an Error always has at least one.
func (r Record[E]) Restore() (*Error[E], error) {
	if len(r.Points) == 0 {
		return nil, errRecordEmpty
	}

	e := &Error[E]{err: r.Original}
	if isErrorType[E]() {
		*any(&e.err).(*error) = errors.New(r.Message)
	}

	e.points.init(r.Points[0])
	for _, p := range r.Points[1:] {
		e.points.push(p)
	}
	e.points.addDropped(r.Dropped)
	for _, f := range r.Context {
		e.context = append(e.context, slog.Any(f.Key, f.Value))
	}
	return e, nil
}

// isErrorType reports whether E is exactly the error interface.
func isErrorType[E any]() bool {
	var zero E
	_, ok := any(&zero).(*error)
	return ok
}

var (
	_ json.Marshaler   = (*Error[error])(nil)
	_ json.Unmarshaler = (*Error[error])(nil)
	_ yaml.Marshaler   = (*Error[error])(nil)
	_ yaml.Unmarshaler = (*Error[error])(nil)
)

// MarshalJSON encodes e as its [Record].
func (e *Error[E]) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Record())
}

// UnmarshalJSON decodes a [Record] into e, replacing its contents.
func (e *Error[E]) UnmarshalJSON(b []byte) error {
	var r Record[E]
	if err := json.Unmarshal(b, &r); err != nil {
		return fmt.Errorf("decode traced error: %w", err)
	}
	return e.restore(r)
}

// MarshalYAML encodes e as its [Record].
func (e *Error[E]) MarshalYAML() (any, error) {
	return e.Record(), nil
}

// UnmarshalYAML decodes a [Record] into e, replacing its contents.
func (e *Error[E]) UnmarshalYAML(value *yaml.Node) error {
	var r Record[E]
	if err := value.Decode(&r); err != nil {
		return fmt.Errorf("decode traced error: %w", err)
	}
	return e.restore(r)
}

func (e *Error[E]) restore(r Record[E]) error {
	restored, err := r.Restore()
	if err != nil {
		return err
	}
	*e = *restored
	return nil
}

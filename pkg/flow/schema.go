package flow

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/plugwise-go/plugwise-setup/pkg/smile"
)

// FieldType is the value type of a form field.
type FieldType uint8

const (
	FieldTypeString FieldType = iota
	FieldTypeInt
	FieldTypeSelect
)

// String returns the type name.
func (t FieldType) String() string {
	switch t {
	case FieldTypeString:
		return "string"
	case FieldTypeInt:
		return "integer"
	case FieldTypeSelect:
		return "select"
	default:
		return "unknown"
	}
}

// Option is one allowed value of a select field.
type Option struct {
	Value string
	Label string
}

// Field describes one form field.
type Field struct {
	Name     string
	Type     FieldType
	Required bool

	// Default is used when the field is not submitted. Nil means none.
	Default any

	// Options lists the allowed values of a select field.
	Options []Option

	// Secret marks values that must not be echoed (passwords).
	Secret bool
}

// Schema is an ordered set of form fields.
type Schema struct {
	Fields []Field
}

// FieldNames returns the field names in order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the named field.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks raw form values against the schema and returns the
// normalized input. Missing fields take their default; a missing
// required field without default, an unknown field, a non-integer in
// an integer field and a value outside a select's options are errors.
func (s *Schema) Validate(raw map[string]any) (Input, error) {
	for name := range raw {
		if _, ok := s.Field(name); !ok {
			return nil, &ValidationError{Field: name, Reason: "extra keys not allowed"}
		}
	}

	out := make(Input, len(s.Fields))
	for _, f := range s.Fields {
		v, present := raw[f.Name]
		if !present || v == nil {
			if f.Default != nil {
				out[f.Name] = f.Default
				continue
			}
			if f.Required {
				return nil, &ValidationError{Field: f.Name, Reason: "required key not provided"}
			}
			continue
		}

		normalized, err := f.coerce(v)
		if err != nil {
			return nil, err
		}
		out[f.Name] = normalized
	}
	return out, nil
}

func (f Field) coerce(v any) (any, error) {
	switch f.Type {
	case FieldTypeInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n == float64(int(n)) {
				return int(n), nil
			}
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				return i, nil
			}
		}
		return nil, &ValidationError{Field: f.Name, Reason: "expected int"}

	case FieldTypeSelect:
		s, ok := v.(string)
		if !ok {
			return nil, &ValidationError{Field: f.Name, Reason: "expected str"}
		}
		if !slices.ContainsFunc(f.Options, func(o Option) bool { return o.Value == s }) {
			return nil, &ValidationError{Field: f.Name, Reason: "value must be one of " + strings.Join(f.optionValues(), ", ")}
		}
		return s, nil

	default:
		s, ok := v.(string)
		if !ok {
			return nil, &ValidationError{Field: f.Name, Reason: "expected str"}
		}
		return s, nil
	}
}

func (f Field) optionValues() []string {
	values := make([]string, len(f.Options))
	for i, o := range f.Options {
		values[i] = o.Value
	}
	return values
}

// gatewaySchema builds the form schema. With a discovery record only
// the password is asked for.
func gatewaySchema(discovered bool) *Schema {
	s := &Schema{}
	if !discovered {
		s.Fields = append(s.Fields,
			Field{Name: FieldHost, Type: FieldTypeString, Required: true},
			Field{Name: FieldPort, Type: FieldTypeInt, Default: smile.DefaultPort},
			Field{
				Name:     FieldUsername,
				Type:     FieldTypeSelect,
				Required: true,
				Default:  smile.UsernameSmile,
				Options: []Option{
					{Value: smile.UsernameSmile, Label: LabelSmile},
					{Value: smile.UsernameStretch, Label: LabelStretch},
				},
			},
		)
	}
	s.Fields = append(s.Fields, Field{Name: FieldPassword, Type: FieldTypeString, Required: true, Secret: true})
	return s
}

// Input is the connection input of a flow, keyed by field name.
type Input map[string]any

// Clone returns a shallow copy.
func (in Input) Clone() Input {
	return maps.Clone(in)
}

// String returns a string field, or "".
func (in Input) String(key string) string {
	s, _ := in[key].(string)
	return s
}

// Int returns an integer field, or 0.
func (in Input) Int(key string) int {
	switch n := in[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// SmileConfig returns the client configuration for this input.
func (in Input) SmileConfig() smile.Config {
	return smile.Config{
		Host:     in.String(FieldHost),
		Password: in.String(FieldPassword),
		Port:     in.Int(FieldPort),
		Username: in.String(FieldUsername),
		Timeout:  ValidateTimeout,
	}
}

package validator

// Validator validates structs tagged with `validate` rules.
type Validator interface {
	Validate(data any) error
}

// JSONValidator additionally checks a raw JSON body against a schema struct.
type JSONValidator interface {
	Validator
	ValidateJSON(body []byte, schema any) error
}

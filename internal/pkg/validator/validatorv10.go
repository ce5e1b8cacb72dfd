package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/isaback/internal/pkg/strcase"
)

var (
	// ErrTranslatorNotFound indicates the requested translator is unavailable.
	ErrTranslatorNotFound = errors.New("translator not found")

	// ErrMalformedBody is returned by ValidateJSON when the body is not a JSON object.
	ErrMalformedBody = errors.New("malformed json body")

	// ErrSchemaNotStruct is returned by ValidateJSON when the schema is not a pointer to struct.
	ErrSchemaNotStruct = errors.New("schema must be a pointer to struct")
)

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// FieldError is a single violation.
type FieldError struct {
	Field   string
	Message string
}

// V10ValidationError lists every violation in schema field order.
//
// Field names are the JSON names of the schema fields.
type V10ValidationError []FieldError

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}
	return strings.Join(vs.Messages(), "; ")
}

// Messages returns the violation messages in order.
func (vs V10ValidationError) Messages() []string {
	msgs := make([]string, 0, len(vs))
	for _, fe := range vs {
		msgs = append(msgs, fe.Message)
	}
	return msgs
}

// Values returns the violations as a field-to-message map.
// When a field has several violations the first one wins.
func (vs V10ValidationError) Values() map[string]string {
	m := make(map[string]string, len(vs))
	for _, fe := range vs {
		if _, ok := m[fe.Field]; !ok {
			m[fe.Field] = fe.Message
		}
	}
	return m
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(fieldName)

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := v10CustomTranslation(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
// Every violated field is reported, not only the first one.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	errV10 := make(V10ValidationError, 0, len(validateErrs))
	for _, fe := range validateErrs {
		errV10 = append(errV10, FieldError{Field: fe.Field(), Message: fe.Translate(v.translator)})
	}

	return errV10
}

// ValidateJSON checks a raw JSON object against schema, a pointer to a struct
// whose fields carry json and validate tags.
//
// Each present field must decode into its Go type, otherwise the field is
// reported as a type violation. Struct rules run afterwards and all
// violations come back in schema field order. An empty body counts as {}.
// The body itself is never modified.
func (v *V10Validator) ValidateJSON(body []byte, schema any) error {
	rv := reflect.ValueOf(schema)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return ErrSchemaNotStruct
	}

	raw := map[string]json.RawMessage{}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
	}

	elem := rv.Elem()
	typ := elem.Type()

	typeErrs := make(map[string]string)
	for i := range typ.NumField() {
		sf := typ.Field(i)
		name := fieldName(sf)
		if !sf.IsExported() || name == "" {
			continue
		}

		value, ok := raw[name]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}

		// only the JSON kind is checked; elements of arrays and objects are left to the handler
		label := typeLabel(sf.Type)
		if label != "mixed" && jsonKind(value) != label {
			typeErrs[name] = fmt.Sprintf("%s must be a `%s` type", name, label)
			continue
		}
		_ = json.Unmarshal(value, elem.Field(i).Addr().Interface())
	}

	ruleErrs := make(map[string][]string)
	if err := v.Validate(schema); err != nil {
		var errV10 V10ValidationError
		if !errors.As(err, &errV10) {
			return err
		}
		for _, fe := range errV10 {
			ruleErrs[fe.Field] = append(ruleErrs[fe.Field], fe.Message)
		}
	}

	var result V10ValidationError
	for i := range typ.NumField() {
		name := fieldName(typ.Field(i))
		if msg, ok := typeErrs[name]; ok {
			result = append(result, FieldError{Field: name, Message: msg})
			continue
		}
		for _, msg := range ruleErrs[name] {
			result = append(result, FieldError{Field: name, Message: msg})
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

func fieldName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return strcase.ToLowerSnake(sf.Name)
	}
	return name
}

// jsonKind names the kind of a raw JSON value with the labels of typeLabel.
func jsonKind(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "mixed"
	}

	switch raw[0] {
	case '"':
		return "string"
	case '[':
		return "array"
	case '{':
		return "object"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}

func typeLabel(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	default:
		return "mixed"
	}
}

//nolint:forcetypeassert // make linter silent
func v10CustomTranslation(validate *validator.Validate, enTrans ut.Translator) error {
	overrides := map[string]string{
		"required": "{0} is required",
		"email":    "{0} must be a valid email",
	}

	for tag, text := range overrides {
		err := validate.RegisterTranslation(tag, enTrans,
			func(ut ut.Translator) error {
				return ut.Add(tag, text, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, err := ut.T(fe.Tag(), fe.Field())
				if err != nil {
					slog.Warn("warning: error translating", "FieldError", fe, "error", err)
					return fe.(error).Error()
				}

				return t
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}

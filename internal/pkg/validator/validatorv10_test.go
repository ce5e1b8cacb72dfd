package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupSchema struct {
	Username string   `json:"username" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	RoleID   string   `json:"roleId" validate:"required"`
	Tags     []string `json:"tags" validate:"required"`
	Nickname string   `json:"nickname"`
}

func newValidator(t *testing.T) *V10Validator {
	t.Helper()

	v, err := NewV10Validator()
	require.NoError(t, err)

	return v
}

func TestV10Validator_ValidateJSON(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name    string
		body    string
		want    []string
		wantErr error
	}{
		{
			name: "empty body reports every required field",
			body: ``,
			want: []string{"username is required", "email is required", "roleId is required", "tags is required"},
		},
		{
			name: "empty object reports every required field",
			body: `{}`,
			want: []string{"username is required", "email is required", "roleId is required", "tags is required"},
		},
		{
			name: "invalid email and missing role",
			body: `{"username":"jdoe","email":"nope","tags":[]}`,
			want: []string{"email must be a valid email", "roleId is required"},
		},
		{
			name: "type mismatch replaces rule messages of that field",
			body: `{"username":10,"email":"j@doe.com","roleId":"1","tags":"x"}`,
			want: []string{"username must be a `string` type", "tags must be a `array` type"},
		},
		{
			name: "null counts as missing",
			body: `{"username":null,"email":"j@doe.com","roleId":"1","tags":["a"]}`,
			want: []string{"username is required"},
		},
		{
			name: "array elements are not type checked",
			body: `{"username":"jdoe","email":"j@doe.com","roleId":"1","tags":[1,{"id":"e"}]}`,
		},
		{
			name: "object where array expected",
			body: `{"username":"jdoe","email":"j@doe.com","roleId":"1","tags":{"a":"b"}}`,
			want: []string{"tags must be a `array` type"},
		},
		{
			name: "valid payload with unknown fields",
			body: `{"username":"jdoe","email":"j@doe.com","roleId":"1","tags":["a"],"extra":true}`,
		},
		{
			name:    "array body is malformed",
			body:    `[1,2]`,
			wantErr: ErrMalformedBody,
		},
		{
			name:    "broken json is malformed",
			body:    `{"username":`,
			wantErr: ErrMalformedBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := v.ValidateJSON([]byte(tt.body), &signupSchema{})

			// Assert
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}

			var errV10 V10ValidationError
			require.True(t, errors.As(err, &errV10))
			assert.Equal(t, tt.want, errV10.Messages())
		})
	}
}

func TestV10Validator_ValidateJSON_SchemaMustBeStructPointer(t *testing.T) {
	v := newValidator(t)

	err := v.ValidateJSON([]byte(`{}`), signupSchema{})

	assert.ErrorIs(t, err, ErrSchemaNotStruct)
}

func TestV10Validator_Validate(t *testing.T) {
	v := newValidator(t)

	err := v.Validate(signupSchema{Username: "jdoe"})

	var errV10 V10ValidationError
	require.True(t, errors.As(err, &errV10))
	assert.Equal(t, map[string]string{
		"email":  "email is required",
		"roleId": "roleId is required",
		"tags":   "tags is required",
	}, errV10.Values())
	assert.NoError(t, v.Validate(signupSchema{Username: "a", Email: "a@b.co", RoleID: "1", Tags: []string{}}))
}

package validation

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email  string  `json:"email" binding:"required,email"`
	Name   *string `json:"name" binding:"omitnil,username"`
	Status *string `form:"status" binding:"omitnil,userstatus"`
	Limit  *int    `form:"limit" binding:"omitnil,min=1,max=100"`
}

func ptr[T any](v T) *T { return &v }

func TestToDetails_ValidatorErrorsUseTagNames(t *testing.T) {
	Init()
	err := binding.Validator.ValidateStruct(&sampleRequest{
		Email:  "nope",
		Name:   ptr(""),
		Status: ptr("deleted"),
		Limit:  ptr(0),
	})
	require.Error(t, err)

	got := map[string]string{}
	for _, d := range ToDetails(err) {
		got[d.Field] = d.Message
	}
	assert.Equal(t, map[string]string{
		"email":  "must be a valid email",
		"name":   "must be at least 1 characters",
		"status": "must be one of: pending, active, inactive",
		"limit":  "must be at least 1",
	}, got)
}

func TestToDetails_NilFieldsAreSkipped(t *testing.T) {
	Init()
	err := binding.Validator.ValidateStruct(&sampleRequest{Email: "jane@example.com"})
	assert.NoError(t, err)
	assert.Nil(t, ToDetails(nil))
}

func TestToDetails_DecodeErrors(t *testing.T) {
	var v sampleRequest
	err := json.Unmarshal([]byte(`{"email": 1}`), &v)
	require.Error(t, err)
	assert.Equal(t, []FieldError{{Field: "email", Message: "must be a string"}}, ToDetails(err))

	err = json.Unmarshal([]byte(`{"email":`), &v)
	require.Error(t, err)
	assert.Equal(t, "body", ToDetails(err)[0].Field)

	_, err = strconv.Atoi("abc")
	assert.Equal(t, "query", ToDetails(err)[0].Field)

	assert.Equal(t, []FieldError{{Field: "body", Message: "invalid payload"}}, ToDetails(errors.New("other")))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil))

	inner := errors.New("boom")
	err := Wrap(inner)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "boom", err.Error())
}

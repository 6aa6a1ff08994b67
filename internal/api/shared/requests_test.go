package shared

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRequest struct {
	Title string `json:"title" validate:"required,max=5"`
}

type selfValidatingRequest struct {
	err error
}

func (r selfValidatingRequest) Validate() error { return r.err }

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"title": "abc"}`))
	var body taggedRequest
	require.NoError(t, DecodeJSON(req, &body))
	assert.Equal(t, "abc", body.Title)

	req = httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"title": `))
	assert.Error(t, DecodeJSON(req, &taggedRequest{}))
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRequest(taggedRequest{Title: "abc"}))

	// Struct tags are enforced
	err := ValidateRequest(taggedRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")

	err = ValidateRequest(taggedRequest{Title: "much too long"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max")

	// A Validate method takes precedence over struct tags
	sentinel := errors.New("bad request body")
	assert.Equal(t, sentinel, ValidateRequest(selfValidatingRequest{err: sentinel}))
	assert.NoError(t, ValidateRequest(selfValidatingRequest{}))
}

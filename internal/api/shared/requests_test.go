package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Type string `json:"type" validate:"required,oneof=a b"`
}

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) (sampleRequest, error) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var v sampleRequest
		err := DecodeJSON(r, &v)
		return v, err
	}

	v, err := decode(`{"type":"a"}`)
	require.NoError(t, err)
	assert.Equal(t, "a", v.Type)

	_, err = decode(``)
	assert.ErrorIs(t, err, ErrEmptyBody)

	_, err = decode(`{"type":"a",}`)
	assert.Error(t, err)

	_, err = decode(`{"type":"a","extra":1}`)
	assert.ErrorContains(t, err, "unknown field")
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&sampleRequest{Type: "b"}))
	assert.Error(t, ValidateRequest(&sampleRequest{}))
	assert.Error(t, ValidateRequest(&sampleRequest{Type: "c"}))
}

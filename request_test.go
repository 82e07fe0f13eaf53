package webpoet

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Minimal(t *testing.T) {
	req, err := NewHttpRequest("https://example.com")
	require.NoError(t, err)

	assert.True(t, req.URL().Equal("https://example.com"))
	assert.Equal(t, "GET", req.Method())
	assert.Equal(t, 0, req.Headers().Len())
	assert.Empty(t, req.Body().Bytes())
}

func TestRequest_Full(t *testing.T) {
	req, err := NewHttpRequest("https://example.com",
		WithMethod("POST"),
		WithRequestHeaders(map[string]string{"User-Agent": "test agent"}),
		WithRequestBody([]byte("body")),
	)
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method())
	assert.Equal(t, "test agent", req.Headers().Get("user-agent"))
	assert.Equal(t, []byte("body"), req.Body().Bytes())
}

func TestRequest_AcceptsTypedInputs(t *testing.T) {
	u, err := NewRequestURL("https://example.com")
	require.NoError(t, err)
	headers := NewHttpRequestHeaders(NameValue{Name: "User-Agent", Value: "test agent"})

	req, err := NewHttpRequest(u,
		WithRequestHeaders(headers),
		WithRequestBody(HttpRequestBody("body")),
	)
	require.NoError(t, err)
	assert.Equal(t, "test agent", req.Headers().Get("User-Agent"))
	assert.Equal(t, []byte("body"), req.Body().Bytes())
}

func TestRequest_AcceptsTransportHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("User-Agent", "mozilla")

	req, err := NewHttpRequest("https://example.com", WithRequestHeaders(h))
	require.NoError(t, err)
	assert.Equal(t, "mozilla", req.Headers().Get("user-agent"))
}

func TestRequest_CoercionFailures(t *testing.T) {
	_, err := NewHttpRequest("https://example.com", WithRequestBody("content"))
	assert.Error(t, err, "a Go string body must be rejected")

	_, err = NewHttpRequest("https://example.com", WithRequestBody(nil))
	assert.Error(t, err)

	_, err = NewHttpRequest("https://example.com", WithRequestHeaders(123))
	assert.Error(t, err)

	_, err = NewHttpRequest(123)
	assert.Error(t, err)
}

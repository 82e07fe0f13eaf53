package webpoet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoDownloader answers every request with a response whose body names
// the method and URL it saw.
func echoDownloader(ctx context.Context, req *HttpRequest) (*HttpResponse, error) {
	body := []byte(fmt.Sprintf("%s %s", req.Method(), req.URL()))
	return NewHttpResponse(req.URL(), body, WithStatus(200))
}

func TestClient_Get(t *testing.T) {
	client := NewHttpClient(echoDownloader)

	resp, err := client.Get(context.Background(), "https://example.com/page")
	require.NoError(t, err)
	assert.Equal(t, "GET https://example.com/page", resp.Text())

	status, ok := resp.Status()
	assert.True(t, ok)
	assert.Equal(t, 200, status)
}

func TestClient_PostCarriesBody(t *testing.T) {
	var seen *HttpRequest
	client := NewHttpClient(func(ctx context.Context, req *HttpRequest) (*HttpResponse, error) {
		seen = req
		return NewHttpResponse(req.URL(), []byte("ok"))
	})

	_, err := client.Post(context.Background(), "https://example.com/submit",
		[]byte("payload"),
		WithRequestHeaders(map[string]string{"Content-Type": "text/plain"}))
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "POST", seen.Method())
	assert.Equal(t, []byte("payload"), seen.Body().Bytes())
	assert.Equal(t, "text/plain", seen.Headers().Get("content-type"))
}

func TestClient_NoDownloader(t *testing.T) {
	client := NewHttpClient(nil)
	_, err := client.Get(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrNoDownloader)
}

func TestClient_BadRequestInputFailsBeforeDownload(t *testing.T) {
	called := false
	client := NewHttpClient(func(ctx context.Context, req *HttpRequest) (*HttpResponse, error) {
		called = true
		return nil, nil
	})
	_, err := client.Request(context.Background(), "https://example.com",
		WithRequestBody("not bytes"))
	assert.Error(t, err)
	assert.False(t, called)
}

func TestClient_BatchExecuteKeepsOrderAndErrors(t *testing.T) {
	boom := errors.New("boom")
	client := NewHttpClient(func(ctx context.Context, req *HttpRequest) (*HttpResponse, error) {
		if req.URL().Path() == "/fail" {
			return nil, boom
		}
		return echoDownloader(ctx, req)
	})

	reqs := make([]*HttpRequest, 0, 3)
	for _, u := range []string{
		"https://example.com/a",
		"https://example.com/fail",
		"https://example.com/b",
	} {
		req, err := NewHttpRequest(u)
		require.NoError(t, err)
		reqs = append(reqs, req)
	}

	results := client.BatchExecute(context.Background(), reqs...)
	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "GET https://example.com/a", results[0].Response.Text())
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Nil(t, results[1].Response)
	require.NoError(t, results[2].Err)
	assert.Equal(t, "GET https://example.com/b", results[2].Response.Text())
}

func TestClient_BatchExecuteHonorsConcurrencyCap(t *testing.T) {
	var inFlight, peak atomic.Int32
	var mu sync.Mutex

	client := NewHttpClient(func(ctx context.Context, req *HttpRequest) (*HttpResponse, error) {
		n := inFlight.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		defer inFlight.Add(-1)
		return NewHttpResponse(req.URL(), []byte("ok"))
	}, WithMaxConcurrent(2))

	reqs := make([]*HttpRequest, 0, 8)
	for i := 0; i < 8; i++ {
		req, err := NewHttpRequest(fmt.Sprintf("https://example.com/%d", i))
		require.NoError(t, err)
		reqs = append(reqs, req)
	}

	results := client.BatchExecute(context.Background(), reqs...)
	require.Len(t, results, 8)
	for _, res := range results {
		require.NoError(t, res.Err)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

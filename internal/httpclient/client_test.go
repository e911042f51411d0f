package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   string            `json:"query"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(echo{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Headers: map[string]string{
				"Content-Type":  r.Header.Get("Content-Type"),
				"X-Request-ID":  r.Header.Get(HeaderRequestID),
				"Authorization": r.Header.Get("Authorization"),
				"Accept":        r.Header.Get("Accept"),
			},
			Body: string(body),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRequest_BuildsURLAndBody(t *testing.T) {
	srv := echoServer(t)
	client, err := NewInstrumentedClient(WithBaseURL(srv.URL+"/api/v1/"), WithRequestIDs())
	require.NoError(t, err)

	var got echo
	resp, err := client.NewRequest().
		SetQueryValues(url.Values{"status": {"open"}, "limit": {"10"}}).
		SetQueryParam("asset type", "crypto & fx").
		SetHeader("Authorization", "Bearer t0k").
		SetBody(map[string]any{"asset_symbol": "BTC"}).
		SetResult(&got).
		Post(context.Background(), "/signals")
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/v1/signals", got.Path)
	assert.Equal(t, "asset+type=crypto+%26+fx&limit=10&status=open", got.Query)
	assert.Equal(t, "application/json", got.Headers["Content-Type"])
	assert.Equal(t, "application/json", got.Headers["Accept"])
	assert.Equal(t, "Bearer t0k", got.Headers["Authorization"])
	assert.Len(t, got.Headers["X-Request-ID"], 36)
	assert.JSONEq(t, `{"asset_symbol":"BTC"}`, got.Body)
}

func TestRequest_ErrorHandlerRunsBeforeDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Signal not found"}`))
	}))
	defer srv.Close()

	client, err := NewInstrumentedClient(WithBaseURL(srv.URL))
	require.NoError(t, err)

	sentinel := errors.New("not found")
	var seen []byte
	_, err = client.NewRequestWithOptions(WithResponseErrorHandler(func(resp *http.Response, body []byte) error {
		if resp.StatusCode >= 400 {
			seen = body
			return sentinel
		}
		return nil
	})).Get(context.Background(), "/signals/9")

	require.ErrorIs(t, err, sentinel)
	assert.JSONEq(t, `{"detail":"Signal not found"}`, string(seen))
}

func TestRequest_DecodeErrorOnBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client, err := NewInstrumentedClient(WithBaseURL(srv.URL))
	require.NoError(t, err)

	var out map[string]any
	_, err = client.NewRequest().SetResult(&out).Get(context.Background(), "/x")

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, http.StatusOK, decodeErr.StatusCode)
}

func TestRequest_EmptyBodyIsNotDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewInstrumentedClient(WithBaseURL(srv.URL))
	require.NoError(t, err)

	var out map[string]any
	resp, err := client.NewRequest().SetResult(&out).Delete(context.Background(), "/airdrops/1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Nil(t, out)
}

func TestRequest_TransportError(t *testing.T) {
	client, err := NewInstrumentedClient(WithBaseURL("http://127.0.0.1:1"))
	require.NoError(t, err)

	_, err = client.NewRequest().Get(context.Background(), "/health")
	require.Error(t, err)
}

package browserql

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Options{Endpoint: "https://example.com/bql"}, testLogger())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestExecuteSendsTokenAndBody(t *testing.T) {
	var gotToken string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("token")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"goto":{"status":200}}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{Endpoint: srv.URL, APIKey: "key-123"}, testLogger())
	require.NoError(t, err)

	data, err := client.Execute(context.Background(), "mutation { goto }", map[string]any{"a": "b"}, "Test")
	require.NoError(t, err)

	assert.Equal(t, "key-123", gotToken)
	assert.Equal(t, "mutation { goto }", gotBody["query"])
	assert.Equal(t, "Test", gotBody["operationName"])
	assert.Equal(t, map[string]any{"a": "b"}, gotBody["variables"])
	assert.Equal(t, map[string]any{"status": float64(200)}, data["goto"])
}

func TestExecuteOmitsEmptyVariables(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{Endpoint: srv.URL, APIKey: "k"}, testLogger())
	require.NoError(t, err)

	_, err = client.Execute(context.Background(), "mutation {}", nil, "")
	require.NoError(t, err)

	_, hasVars := gotBody["variables"]
	assert.False(t, hasVars)
	_, hasOp := gotBody["operationName"]
	assert.False(t, hasOp)
}

func TestExecuteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("blocked"))
	}))
	defer srv.Close()

	client, err := NewClient(Options{Endpoint: srv.URL, APIKey: "k"}, testLogger())
	require.NoError(t, err)

	_, err = client.Execute(context.Background(), "mutation {}", nil, "")

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusForbidden, terr.Status)
	assert.Equal(t, "blocked", terr.Body)
}

func TestExecuteGraphQLErrorsOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null,"errors":[{"message":"navigation timeout"}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{Endpoint: srv.URL, APIKey: "k"}, testLogger())
	require.NoError(t, err)

	_, err = client.Execute(context.Background(), "mutation {}", nil, "")

	var eerr *ExecutionError
	require.True(t, errors.As(err, &eerr))
	require.Len(t, eerr.Errors, 1)
	assert.Equal(t, "navigation timeout", eerr.Errors[0].Message)
}

func TestPageText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"goto":{"status":200},"pageText":{"text":"{\"ok\":true}"}}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{Endpoint: srv.URL, APIKey: "k"}, testLogger())
	require.NoError(t, err)

	text, err := client.PageText(context.Background(), "https://example.com/api")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
}

func TestPageTextMissingNode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"goto":{"status":200}}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{Endpoint: srv.URL, APIKey: "k"}, testLogger())
	require.NoError(t, err)

	text, err := client.PageText(context.Background(), "https://example.com/api")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

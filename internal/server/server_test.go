package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/pipeline"
)

const claimText = `Policy Number: PL-12345
Claimant Name: John Doe
Date of Loss: 28th November 2025
Amount Claimed: INR 45,000
Description: Water damage to kitchen cabinets after a pipe burst.`

func newTestServer(t *testing.T, maxBody int64) *httptest.Server {
	t.Helper()
	cfg := model.DefaultConfig()
	p := pipeline.NewPipeline(cfg)
	srv := httptest.NewServer(NewRouter(NewHandler(p, nil), maxBody, nil))
	t.Cleanup(srv.Close)
	return srv
}

type envelope[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error"`
}

func decode[T any](t *testing.T, resp *http.Response) envelope[T] {
	t.Helper()
	defer resp.Body.Close()
	var env envelope[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, 0)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	env := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", env.Data["status"])
	assert.Equal(t, false, env.Data["model"])
}

func TestExtract_JSON(t *testing.T) {
	srv := newTestServer(t, 0)

	body, _ := json.Marshal(map[string]string{"text": claimText, "source": "upload-1"})
	resp, err := http.Post(srv.URL+"/v1/extract", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decode[model.Report](t, resp)
	assert.Equal(t, "upload-1", env.Data.Source)
	assert.Equal(t, "PL-12345", model.Deref(env.Data.Record.PolicyNumber))
	assert.Equal(t, "2025-11-28", model.Deref(env.Data.Record.DateOfLoss))
	assert.True(t, env.Data.Validation.Valid)
}

func TestExtract_PlainText(t *testing.T) {
	srv := newTestServer(t, 0)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/extract?source=scan.txt", strings.NewReader(claimText))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("X-Request-ID", "req-42")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.Header.Get("X-Request-ID"))

	env := decode[model.Report](t, resp)
	assert.Equal(t, "scan.txt", env.Data.Source)
	assert.Equal(t, "INR 45000.00", model.Deref(env.Data.Record.AmountClaimed))
}

func TestExtract_DefaultSourceUsesRequestID(t *testing.T) {
	srv := newTestServer(t, 0)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/extract", strings.NewReader(`{"text": ""}`))
	req.Header.Set("X-Request-ID", "abc")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decode[model.Report](t, resp)
	assert.Equal(t, "http:abc", env.Data.Source)
	assert.False(t, env.Data.Validation.Valid, "empty text yields an all-absent record")
}

func TestExtract_MissingText(t *testing.T) {
	srv := newTestServer(t, 0)

	resp, err := http.Post(srv.URL+"/v1/extract", "application/json", strings.NewReader(`{"source": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env := decode[any](t, resp)
	assert.Equal(t, pipeline.ErrNoInput.Error(), env.Error)
}

func TestExtract_BadJSON(t *testing.T) {
	srv := newTestServer(t, 0)

	resp, err := http.Post(srv.URL+"/v1/extract", "application/json", strings.NewReader(`{"text":`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestExtract_BodyTooLarge(t *testing.T) {
	srv := newTestServer(t, 64)

	resp, err := http.Post(srv.URL+"/v1/extract", "text/plain", strings.NewReader(strings.Repeat("x", 100)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestValidate(t *testing.T) {
	srv := newTestServer(t, 0)

	body := `{"policy_number": "PL-12345", "date_of_loss": "2025-01-15", "amount_claimed": "-500.00"}`
	resp, err := http.Post(srv.URL+"/v1/validate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decode[model.ValidationResult](t, resp)
	assert.True(t, env.Data.Valid, "70 points meets the threshold")
	assert.InDelta(t, 0.7, env.Data.Score, 1e-9)
	assert.Equal(t, []model.IssueKind{model.IssueAmountNonPositive}, env.Data.Issues)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, 0)

	resp, err := http.Get(srv.URL + "/v1/extract")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestServer_RunShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := NewHandler(pipeline.NewPipeline(model.DefaultConfig()), nil)
	s := New(ln.Addr().String(), NewRouter(h, 0, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

package endpoint_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ariebrainware/clinic-booking/booking"
	"github.com/ariebrainware/clinic-booking/classifier"
	"github.com/ariebrainware/clinic-booking/metrics"
	"github.com/ariebrainware/clinic-booking/routes"
	"github.com/ariebrainware/clinic-booking/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

type apiResp struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// requestParams groups HTTP request parameters to reduce function arguments
type requestParams struct {
	method  string
	path    string
	body    []byte
	headers map[string]string
}

func doRequest(r http.Handler, params requestParams) (*httptest.ResponseRecorder, error) {
	req, err := http.NewRequest(params.method, params.path, bytes.NewBuffer(params.body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range params.headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr, nil
}

// stubChatClient answers every completion with a fixed reply or error.
type stubChatClient struct {
	content string
	err     error
}

func (s stubChatClient) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: s.content}}},
	}, nil
}

type testServer struct {
	router *gin.Engine
	store  *store.MemoryStore
}

// newTestServer builds the full router on a seeded memory store. A nil client
// runs the classifier in fallback mode.
func newTestServer(t *testing.T, client classifier.ChatCompleter) testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	s := store.NewMemoryStore()
	require.NoError(t, store.SeedDoctors(context.Background(), s))

	svc := booking.NewService(s, classifier.New(client, classifier.Options{Metrics: m}), m)

	r := gin.New()
	routes.SetupRoutes(r, routes.Dependencies{
		AppName:  "Clinic Booking",
		Service:  svc,
		Metrics:  m,
		Gatherer: reg,
	})
	return testServer{router: r, store: s}
}

func (ts testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, apiResp) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	w, err := doRequest(ts.router, requestParams{method: method, path: path, body: raw})
	require.NoError(t, err)

	var resp apiResp
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func janeDoeBody() map[string]interface{} {
	return map[string]interface{}{
		"patient_name":     "Jane Doe",
		"email":            "jane@example.com",
		"phone":            "5551234567",
		"preferred_date":   "2025-06-01",
		"preferred_time":   "09:00",
		"reason_for_visit": "Annual check-up, no prior issues",
	}
}

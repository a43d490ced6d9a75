package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtharvaDeo101/KARA/internal/application/usecase"
	"github.com/AtharvaDeo101/KARA/internal/domain/model"
	"github.com/AtharvaDeo101/KARA/internal/domain/service"
	"github.com/AtharvaDeo101/KARA/internal/presentation/rest"
	"github.com/AtharvaDeo101/KARA/pkg/observability"
	"github.com/AtharvaDeo101/KARA/pkg/testutil"
)

type stubCompleter struct {
	configured bool
	reply      string
	err        error
}

func (s *stubCompleter) Configured() bool { return s.configured }

func (s *stubCompleter) Complete(context.Context, model.ChatPrompt) (string, error) {
	return s.reply, s.err
}

type setup struct {
	classifier *testutil.StubClassifier
	completer  *stubCompleter
	noModel    bool
}

func newRouter(t *testing.T, s setup) http.Handler {
	t.Helper()
	logger := observability.NopLogger()

	engine := service.NewPredictionEngine(nil)
	if !s.noModel {
		if s.classifier == nil {
			s.classifier = testutil.NewStubClassifier(0.82)
		}
		engine = service.NewPredictionEngine(s.classifier)
	}
	if s.completer == nil {
		s.completer = &stubCompleter{configured: true, reply: "Study a little every day."}
	}

	reg := prometheus.NewRegistry()
	return rest.NewRouter(rest.RouterConfig{
		Predict:        usecase.NewPredictCompletion(service.NewValidator(), engine, nil, logger),
		Chat:           usecase.NewChat(s.completer, logger),
		Logger:         logger,
		Registry:       reg,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AllowedOrigins: []string{"http://localhost:3000"},
		Version:        "test",
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPredict_Success(t *testing.T) {
	rec := do(t, newRouter(t, setup{}), http.MethodPost, "/predict", testutil.ValidRawSignalJSON)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	body := decode(t, rec)
	assert.Equal(t, true, body["will_complete"])
	assert.Equal(t, 0.82, body["completion_probability"])
	assert.Equal(t, "Low", body["dropout_risk"])
	assert.Equal(t, 0.82, body["confidence"])

	input := body["input_data"].(map[string]any)
	assert.Equal(t, 25.5, input["TimeSpentOnCourse"])
	assert.Equal(t, 15.0, input["NumberOfVideosWatched"])
	assert.Equal(t, "Programming", input["CourseCategory"])
}

func TestPredict_ValidationError(t *testing.T) {
	clf := testutil.NewStubClassifier(0.82)
	h := newRouter(t, setup{classifier: clf})

	body := strings.Replace(testutil.ValidRawSignalJSON, `"QuizScores":85`, `"QuizScores":105`, 1)
	rec := do(t, h, http.MethodPost, "/predict", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "validation failed", resp["error"])
	details := resp["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "QuizScores", details[0].(map[string]any)["field"])
	assert.Zero(t, clf.Calls())
}

func TestPredict_FractionalCountRejected(t *testing.T) {
	body := strings.Replace(testutil.ValidRawSignalJSON, `"NumberOfVideosWatched":15`, `"NumberOfVideosWatched":15.5`, 1)
	rec := do(t, newRouter(t, setup{}), http.MethodPost, "/predict", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be an integer")
}

func TestPredict_MalformedJSON(t *testing.T) {
	h := newRouter(t, setup{})

	for _, body := range []string{`{"TimeSpentOnCourse":`, `[1,2]`, `null`, `{} {}`} {
		rec := do(t, h, http.MethodPost, "/predict", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestPredict_ModelUnavailable(t *testing.T) {
	rec := do(t, newRouter(t, setup{noModel: true}), http.MethodPost, "/predict", testutil.ValidRawSignalJSON)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, model.ErrModelUnavailable.Error(), decode(t, rec)["error"])
}

func TestPredict_ExecutionError(t *testing.T) {
	clf := testutil.NewStubClassifier(0.5)
	clf.Err = assert.AnError

	rec := do(t, newRouter(t, setup{classifier: clf}), http.MethodPost, "/predict", testutil.ValidRawSignalJSON)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], assert.AnError.Error())
}

func TestPredict_MethodNotAllowed(t *testing.T) {
	rec := do(t, newRouter(t, setup{}), http.MethodGet, "/predict", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	t.Run("loaded", func(t *testing.T) {
		rec := do(t, newRouter(t, setup{}), http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy","model_loaded":true,"gemini_api_configured":true}`, rec.Body.String())
	})

	t.Run("degraded", func(t *testing.T) {
		h := newRouter(t, setup{noModel: true, completer: &stubCompleter{}})
		rec := do(t, h, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"degraded","model_loaded":false,"gemini_api_configured":false}`, rec.Body.String())
	})
}

func TestProbes(t *testing.T) {
	assert.Equal(t, http.StatusOK, do(t, newRouter(t, setup{}), http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(t, newRouter(t, setup{}), http.MethodGet, "/readyz", "").Code)

	rec := do(t, newRouter(t, setup{noModel: true}), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not loaded", decode(t, rec)["checks"].(map[string]any)["model"])
}

func TestRoot(t *testing.T) {
	h := newRouter(t, setup{})

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "running", body["status"])
	assert.Contains(t, body["endpoints"], "predict")

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/unknown", "").Code)
}

func TestChat(t *testing.T) {
	tests := []struct {
		name      string
		completer *stubCompleter
		body      string
		status    int
		contains  string
	}{
		{"reply", nil, `{"message":"hi","history":[]}`, http.StatusOK, "Study a little every day."},
		{"empty message", nil, `{"message":""}`, http.StatusUnprocessableEntity, "message"},
		{"malformed", nil, `{"message":`, http.StatusBadRequest, "malformed"},
		{"not configured", &stubCompleter{}, `{"message":"hi"}`, http.StatusInternalServerError, "GEMINI_API_KEY"},
		{"timeout", &stubCompleter{configured: true, err: model.ErrUpstreamTimeout}, `{"message":"hi"}`, http.StatusGatewayTimeout, "timed out"},
		{"upstream", &stubCompleter{configured: true, err: &model.UpstreamError{StatusCode: 429, Message: "quota"}}, `{"message":"hi"}`, http.StatusBadGateway, "quota"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newRouter(t, setup{completer: tt.completer}), http.MethodPost, "/chat", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newRouter(t, setup{})
	do(t, h, http.MethodPost, "/predict", testutil.ValidRawSignalJSON)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `kara_http_requests_total{method="POST",route="POST /predict",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	newRouter(t, setup{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

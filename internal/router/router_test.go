package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KofuCodes/ReMind/internal/config"
	"github.com/KofuCodes/ReMind/internal/models"
	"github.com/KofuCodes/ReMind/internal/scoring"
	"github.com/KofuCodes/ReMind/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.Conf = &config.Config{
		Server: config.ServerConfig{Port: "5050", SessionSecret: "test-secret"},
	}

	st := store.NewMemoryStore(zap.NewNop(), scoring.ScoreBased{}, models.DefaultBaseline())
	return Setup(zap.NewNop(), st, nil, nil, nil), st
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDeviceScoreSubmission(t *testing.T) {
	r, st := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/score", `{"score": 9, "patientId": "p-17"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status         string  `json:"status"`
		StoredID       string  `json:"storedId"`
		DeviationScore float64 `json:"deviationScore"`
		RiskLevel      string  `json:"riskLevel"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Contains(t, resp.StoredID, "device-")
	assert.InDelta(t, 100*0.5/9.5, resp.DeviationScore, 0.001)
	assert.Equal(t, "low", resp.RiskLevel)

	// Optional fields were defaulted.
	rec, ok := st.Latest()
	require.True(t, ok)
	assert.Equal(t, 10, rec.RoundsPlayed)
	assert.Equal(t, 9, rec.RoundsCorrect)
	assert.Equal(t, 2000.0, rec.AvgReactionMs)
	assert.Equal(t, "p-17", rec.Patient.ID)
}

func TestDeviceScoreRejectsNonNumeric(t *testing.T) {
	r, st := newTestRouter(t)

	for _, body := range []string{`{"score": "nine"}`, `{}`, `not json`} {
		w := doJSON(t, r, http.MethodPost, "/score", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body %q", body)
		assert.NotEmpty(t, resp["error"], "body %q", body)
	}

	assert.Empty(t, st.All())
}

func TestResultsSubmission(t *testing.T) {
	r, _ := newTestRouter(t)

	body := `{
		"sequenceLength": 6,
		"roundsPlayed": 10,
		"roundsCorrect": 9,
		"avgReactionMs": 2000,
		"score": 9,
		"patient": {"id": "p-1", "name": "Alex Rivera", "age": 61}
	}`
	w := doJSON(t, r, http.MethodPost, "/api/results", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string               `json:"status"`
		Record models.SessionRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, models.SourceWeb, resp.Record.Source)
	assert.Equal(t, "Alex Rivera", resp.Record.Patient.Name)
	assert.Equal(t, models.RiskLow, resp.Record.RiskLevel)
}

func TestResultsSubmissionValidation(t *testing.T) {
	r, st := newTestRouter(t)

	cases := []string{
		`{"roundsPlayed": "ten", "roundsCorrect": 5, "avgReactionMs": 2000}`,
		`{"roundsCorrect": 5, "avgReactionMs": 2000}`,
		`{"roundsPlayed": 10, "avgReactionMs": 2000}`,
		`{"roundsPlayed": 10, "roundsCorrect": 5}`,
		`{"roundsPlayed": 5, "roundsCorrect": 6, "avgReactionMs": 2000}`,
		`{"roundsPlayed": 10, "roundsCorrect": 5, "avgReactionMs": -1}`,
	}
	for _, body := range cases {
		w := doJSON(t, r, http.MethodPost, "/api/results", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}

	assert.Empty(t, st.All())
}

func TestHistoryIsMostRecentFirst(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/results", `{"roundsPlayed": 10, "roundsCorrect": 9, "avgReactionMs": 2000}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/results", `{"roundsPlayed": 10, "roundsCorrect": 3, "avgReactionMs": 3000}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/results", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sessions []models.SessionRecord `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Sessions, 2)
	assert.Equal(t, 3, resp.Sessions[0].RoundsCorrect)
	assert.Equal(t, 9, resp.Sessions[1].RoundsCorrect)
}

func TestLatestEmptyReturnsNoContent(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/results/latest", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBaselineApplyRescoresLatestOnly(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/results", `{"roundsPlayed": 10, "roundsCorrect": 9, "avgReactionMs": 2000, "score": 9}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/results", `{"roundsPlayed": 10, "roundsCorrect": 9, "avgReactionMs": 2000, "score": 9}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/baseline", `{"expectedScore": 20}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/results", "")
	var resp struct {
		Sessions []models.SessionRecord `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Sessions, 2)

	// diff=11, maxDiff=20 -> 55 (medium) on the head; the older record
	// keeps its original score.
	assert.InDelta(t, 55.0, resp.Sessions[0].DeviationScore, 0.001)
	assert.Equal(t, models.RiskMedium, resp.Sessions[0].RiskLevel)
	assert.InDelta(t, 100*0.5/9.5, resp.Sessions[1].DeviationScore, 0.001)
	assert.Equal(t, models.RiskLow, resp.Sessions[1].RiskLevel)
}

func TestBaselineShow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/baseline", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Baseline models.Baseline `json:"baseline"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 9.5, resp.Baseline.ExpectedScore)
}

func TestMirrorMergeIsIdempotent(t *testing.T) {
	r, st := newTestRouter(t)

	rec := `{"id": "device-01HXYZ", "source": "device", "score": 8, "riskLevel": "low", "timestamp": "2026-08-30T10:00:00Z"}`

	w := doJSON(t, r, http.MethodPost, "/api/mirror", rec)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"merged":true`)

	w = doJSON(t, r, http.MethodPost, "/api/mirror", rec)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"merged":false`)

	assert.Len(t, st.All(), 1)

	w = doJSON(t, r, http.MethodPost, "/api/mirror", `{"source": "device"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardRenders(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/results", `{"roundsPlayed": 10, "roundsCorrect": 3, "avgReactionMs": 3000}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/dashboard?source=web", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "echarts")
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sdko-org/stream-gate/internal/config"
	"github.com/sdko-org/stream-gate/internal/models"
	"github.com/sdko-org/stream-gate/internal/registry"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "test-admin-token"

func newTestRouter(t *testing.T) (*mux.Router, *registry.Registry) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		AdminToken:         testAdminToken,
		DefaultCodeMinutes: 10,
		MaxCodeMinutes:     1440,
	}
	reg := registry.New(logger, cfg)
	h := NewAccessCodeHandler(logger, cfg, reg)

	r := mux.NewRouter()
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))
	r.Use(MetricsMiddleware)
	RegisterRoutes(r, h)
	return r, reg
}

func doRequest(t *testing.T, router *mux.Router, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = strings.NewReader(raw)
		} else {
			payload, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(payload)
		}
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAdminListRequiresToken(t *testing.T) {
	router, reg := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/access-codes?action=admin", "wrong-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeBody(t, rec)["error"])

	// rejected requests leave the registry untouched
	assert.Equal(t, 0, reg.AdminView().TotalCodes)
}

func TestAdminList(t *testing.T) {
	router, reg := newTestRouter(t)

	first, err := reg.Generate(10)
	require.NoError(t, err)
	_, err = reg.Generate(30)
	require.NoError(t, err)
	require.Equal(t, registry.ValidationOK, reg.Validate(first.Code, "203.0.113.7"))

	rec := doRequest(t, router, http.MethodGet, "/access-codes?action=admin", testAdminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view models.AdminView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 2, view.TotalCodes)
	assert.Len(t, view.ActiveCodes, 2)
	assert.Len(t, view.UsageLogs, 3)
	assert.Equal(t, first.Code, view.ActiveCodes[0].Code)
	assert.NotNil(t, view.ActiveCodes[0].UsedAt)
	assert.Equal(t, "203.0.113.7", view.ActiveCodes[0].UsedBy)
}

func TestGetInvalidAction(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, target := range []string{"/access-codes", "/access-codes?action=bogus"} {
		rec := doRequest(t, router, http.MethodGet, target, testAdminToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid action", decodeBody(t, rec)["error"])
	}
}

func TestGenerateThenValidate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/access-codes", testAdminToken,
		map[string]interface{}{"action": "generate", "duration": 5})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	code, _ := body["code"].(string)
	assert.Regexp(t, `^[A-Z0-9]{8}$`, code)
	assert.Equal(t, float64(5), body["expirationMinutes"])
	assert.NotEmpty(t, body["expiresAt"])

	rec = doRequest(t, router, http.MethodPost, "/access-codes", "",
		map[string]interface{}{"action": "validate", "code": code})
	require.Equal(t, http.StatusOK, rec.Code)

	body = decodeBody(t, rec)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "Access code validated successfully", body["message"])
}

func TestGenerateRequiresToken(t *testing.T) {
	router, reg := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/access-codes", "",
		map[string]interface{}{"action": "generate"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeBody(t, rec)["error"])
	assert.Equal(t, 0, reg.AdminView().TotalCodes)
}

func TestGenerateDefaultDuration(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/access-codes", testAdminToken,
		map[string]interface{}{"action": "generate"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(10), decodeBody(t, rec)["expirationMinutes"])
}

func TestValidateMissingCode(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/access-codes", "",
		map[string]interface{}{"action": "validate"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, "Code is required", body["error"])
}

func TestValidateUnknownCode(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/access-codes", "",
		map[string]interface{}{"action": "validate", "code": "ZZZZZZZZ"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, "Invalid access code", body["error"])
}

func TestValidateRevokedCode(t *testing.T) {
	router, reg := newTestRouter(t)

	result, err := reg.Generate(10)
	require.NoError(t, err)

	rec := doRequest(t, router, http.MethodPost, "/access-codes", testAdminToken,
		map[string]interface{}{"action": "revoke", "code": result.Code})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Code revoked successfully", decodeBody(t, rec)["message"])

	rec = doRequest(t, router, http.MethodPost, "/access-codes", "",
		map[string]interface{}{"action": "validate", "code": result.Code})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Access code has been deactivated", decodeBody(t, rec)["error"])
}

func TestRevokeErrors(t *testing.T) {
	router, reg := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/access-codes", "",
		map[string]interface{}{"action": "revoke", "code": "ZZZZZZZZ"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/access-codes", testAdminToken,
		map[string]interface{}{"action": "revoke"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Code is required", decodeBody(t, rec)["error"])

	rec = doRequest(t, router, http.MethodPost, "/access-codes", testAdminToken,
		map[string]interface{}{"action": "revoke", "code": "ZZZZZZZZ"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Code not found", decodeBody(t, rec)["error"])

	// idempotent over HTTP too
	result, err := reg.Generate(10)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		rec = doRequest(t, router, http.MethodPost, "/access-codes", testAdminToken,
			map[string]interface{}{"action": "revoke", "code": result.Code})
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestPostInvalidAction(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/access-codes", testAdminToken,
		map[string]interface{}{"action": "explode"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid action", decodeBody(t, rec)["error"])
}

func TestMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/access-codes", testAdminToken, "{not json")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, rec)["error"])
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/api/dto"
	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/config"
	"github.com/spec-kit/docdesk/internal/domain"
)

func testConfig() config.Config {
	return config.Config{
		App: config.AppConfig{Name: "docdesk", Version: "test"},
		Stub: config.StubConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
			SeedPassword:          "password",
		},
	}
}

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := NewBackend(context.Background(), testConfig(), zap.NewNop(), nil)
	require.NoError(t, err)
	return backend
}

func doJSON(t *testing.T, b *Backend, method, path, token string, body any) (*nethttp.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := b.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func login(t *testing.T, b *Backend, username string) string {
	t.Helper()
	resp, body := doJSON(t, b, nethttp.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: "password"})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Token
}

func TestLoginIssuesReadableToken(t *testing.T) {
	b := newTestBackend(t)
	token := login(t, b, "head")

	claims, err := auth.NewCodec().Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "head", claims.Subject)
	assert.Equal(t, domain.RoleDeptHead, claims.Role)
	require.NotNil(t, claims.Department)
	assert.Equal(t, "Finance", claims.Department.Name)
	_, hasExp := claims.Expiry()
	assert.True(t, hasExp)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	b := newTestBackend(t)

	resp, body := doJSON(t, b, nethttp.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "alice", Password: "nope"})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":{"code":"UNAUTHORIZED","message":"Bad credentials"}}`, string(body))

	resp, _ = doJSON(t, b, nethttp.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "alice"})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestProtectedRoutesNeedBearer(t *testing.T) {
	b := newTestBackend(t)

	resp, _ := doJSON(t, b, nethttp.MethodGet, "/api/documents", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, b, nethttp.MethodGet, "/api/documents", "not-a-jwt", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	forged, _, err := auth.NewTokenManager("other-secret", 60).GenerateToken(domain.User{Username: "director", Role: domain.RoleDirector})
	require.NoError(t, err)
	resp, _ = doJSON(t, b, nethttp.MethodGet, "/api/documents", forged, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}

func TestRoleChecksReturnForbidden(t *testing.T) {
	b := newTestBackend(t)
	token := login(t, b, "alice")

	resp, _ := doJSON(t, b, nethttp.MethodGet, "/api/users", token, nil)
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, b, nethttp.MethodPost, "/api/departments", token, dto.DepartmentRequest{Name: "Ops"})
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
}

func TestUsersArePaginated(t *testing.T) {
	b := newTestBackend(t)
	token := login(t, b, "director")

	resp, body := doJSON(t, b, nethttp.MethodGet, "/api/users?page=1&size=2", token, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))

	var page domain.Page[domain.User]
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, int64(5), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.Number)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "alice", page.Content[0].Username)
}

func TestDocumentLifecycle(t *testing.T) {
	b := newTestBackend(t)
	alice := login(t, b, "alice")
	bob := login(t, b, "bob")

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("file", "report.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("quarterly numbers"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(nethttp.MethodPost, "/api/documents", &form)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+alice)
	resp, err := b.App.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	var doc domain.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	resp.Body.Close()
	assert.Equal(t, "report.txt", doc.Filename)
	assert.Equal(t, "alice", doc.OwnerUsername())

	resp, _ = doJSON(t, b, nethttp.MethodPut, "/api/documents/1", bob, dto.DocumentUpdateRequest{Filename: "mine.txt"})
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	resp, body := doJSON(t, b, nethttp.MethodPut, "/api/documents/1", alice, dto.DocumentUpdateRequest{Filename: "q1.txt"})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))

	resp, body = doJSON(t, b, nethttp.MethodGet, "/api/documents/1/download", alice, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "quarterly numbers", string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "q1.txt")

	resp, body = doJSON(t, b, nethttp.MethodGet, "/api/documents/all", bob, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body), "other department sees nothing")

	resp, _ = doJSON(t, b, nethttp.MethodDelete, "/api/documents/1", alice, nil)
	assert.Equal(t, nethttp.StatusNoContent, resp.StatusCode)
	resp, _ = doJSON(t, b, nethttp.MethodDelete, "/api/documents/1", alice, nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}

func TestUnknownRouteIsNotAnInternalError(t *testing.T) {
	b := newTestBackend(t)
	resp, body := doJSON(t, b, nethttp.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `"NOT_FOUND"`)
}

func TestHealthLive(t *testing.T) {
	b := newTestBackend(t)
	resp, body := doJSON(t, b, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"alive"`)

	resp, _ = doJSON(t, b, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

package identity

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, repo *mockRepository, devMode bool) http.Handler {
	t.Helper()
	service := NewService(repo, newTestHasher())
	handler := NewHandler(service, repo, devMode)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postSignup(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSignup_Succeeds(t *testing.T) {
	repo := newMockRepository()
	h := newTestHandler(t, repo, false)

	rec := postSignup(t, h, `{"fullName":"Ann Lee","email":"ann@example.com","password":"secret1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Status  int    `json:"status"`
		Success bool   `json:"success"`
		Message string `json:"message"`
		User    struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.True(t, resp.Success)
	assert.Equal(t, "Signup successful", resp.Message)
	assert.Equal(t, "ann@example.com", resp.User.Email)
	assert.Equal(t, "user", resp.User.Role)
	assert.NotEmpty(t, resp.User.ID)

	// The transaction finished with a commit, and the plaintext never
	// appears in the response.
	require.NotNil(t, repo.lastTx)
	assert.True(t, repo.lastTx.committed)
	assert.False(t, repo.lastTx.rolledBack)
	assert.NotContains(t, rec.Body.String(), "secret1")
	assert.NotContains(t, rec.Body.String(), "passwordHash")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	h := newTestHandler(t, repo, false)

	rec := postSignup(t, h, `{"fullName":"Ann Lee","email":"ann@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postSignup(t, h, `{"fullName":"Other Name","email":"ann@example.com","password":"different"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Status  int    `json:"status"`
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.False(t, resp.Success)
	assert.Equal(t, "Email already registered", resp.Message)

	// Rolled back, and the first user is untouched.
	assert.True(t, repo.lastTx.rolledBack)
	assert.False(t, repo.lastTx.committed)
	assert.Len(t, repo.users, 1)
}

func TestSignup_InvalidJSON(t *testing.T) {
	h := newTestHandler(t, newMockRepository(), false)

	rec := postSignup(t, h, `{"fullName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing full name", `{"email":"ann@example.com","password":"secret1"}`},
		{"missing email", `{"fullName":"Ann Lee","password":"secret1"}`},
		{"malformed email", `{"fullName":"Ann Lee","email":"not-an-email","password":"secret1"}`},
		{"short password", `{"fullName":"Ann Lee","email":"ann@example.com","password":"12345"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			h := newTestHandler(t, repo, false)

			rec := postSignup(t, h, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			// Validation rejects before any transaction is opened.
			assert.Nil(t, repo.lastTx)
			assert.Empty(t, repo.users)
		})
	}
}

func TestSignup_InfrastructureFailure(t *testing.T) {
	repo := newMockRepository()
	repo.createUserErr = errors.New("connection refused")
	h := newTestHandler(t, repo, false)

	rec := postSignup(t, h, `{"fullName":"Ann Lee","email":"ann@example.com","password":"secret1"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Stack   string `json:"stack"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "internal error", resp.Message)
	assert.Empty(t, resp.Stack, "no failure detail outside development")
	assert.True(t, repo.lastTx.rolledBack)
}

func TestSignup_DevModeAttachesDetail(t *testing.T) {
	repo := newMockRepository()
	repo.createUserErr = errors.New("connection refused")
	h := newTestHandler(t, repo, true)

	rec := postSignup(t, h, `{"fullName":"Ann Lee","email":"ann@example.com","password":"secret1"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Stack string `json:"stack"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Stack, "connection refused")
}

func TestSignup_BeginTxFailure(t *testing.T) {
	repo := newMockRepository()
	repo.beginErr = errors.New("pool exhausted")
	h := newTestHandler(t, repo, false)

	rec := postSignup(t, h, `{"fullName":"Ann Lee","email":"ann@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, repo.users)
}

func TestGetUser(t *testing.T) {
	repo := newMockRepository()
	h := newTestHandler(t, repo, false)

	rec := postSignup(t, h, `{"fullName":"Ann Lee","email":"ann@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodGet, "/users/"+created.User.ID, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		User    struct {
			Email    string `json:"email"`
			FullName string `json:"fullName"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ann@example.com", resp.User.Email)
	assert.Equal(t, "Ann Lee", resp.User.FullName)
}

func TestGetUser_NotFound(t *testing.T) {
	h := newTestHandler(t, newMockRepository(), false)

	req := httptest.NewRequest(http.MethodGet, "/users/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account_service/internal/apperror"
	"account_service/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeService returns canned results so the controller can be exercised
// without a database.
type fakeService struct {
	signupRes *SignupResult
	signupErr error
	loginRes  *LoginResult
	loginErr  error
}

func (f *fakeService) Signup(context.Context, SignupCommand) (*SignupResult, error) {
	return f.signupRes, f.signupErr
}

func (f *fakeService) Login(context.Context, LoginCommand) (*LoginResult, error) {
	return f.loginRes, f.loginErr
}

func newRouter(svc UserServiceInterface) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	NewUserController(svc).SetupRoutes(r)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validSignupBody() map[string]string {
	return map[string]string{
		"id":       "40c0813a-6805-40e7-9f49-3ee69d6e0c98",
		"email":    "user1@example.com",
		"username": "user1",
		"password": "password1",
	}
}

func TestSignupEndpoint_Success(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	router := newRouter(&fakeService{signupRes: &SignupResult{
		ID:         signupID,
		Email:      "user1@example.com",
		Username:   "user1",
		CreateTime: now,
		UpdateTime: now,
	}})

	w := postJSON(t, router, "/signup", validSignupBody())
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "40c0813a-6805-40e7-9f49-3ee69d6e0c98", resp["id"])
	assert.Equal(t, "user1@example.com", resp["email"])
	assert.Equal(t, "user1", resp["username"])
	assert.Equal(t, resp["create_time"], resp["update_time"])
	assert.NotContains(t, resp, "password")
}

func TestSignupEndpoint_EmailConflict(t *testing.T) {
	router := newRouter(&fakeService{signupErr: apperror.New(apperror.EmailAlreadyExists)})

	w := postJSON(t, router, "/signup", validSignupBody())
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
			Details []any  `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusConflict, resp.Error.Code)
	assert.Equal(t, "EMAIL_ALREADY_EXISTS", resp.Error.Status)
	assert.Equal(t, "This email is already registered.", resp.Error.Message)
	assert.Empty(t, resp.Error.Details)
}

func TestSignupEndpoint_ResourceIDConflict(t *testing.T) {
	router := newRouter(&fakeService{signupErr: apperror.New(apperror.ResourceIDAlreadyExists)})

	w := postJSON(t, router, "/signup", validSignupBody())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "RESOURCE_ID_ALREADY_EXISTS")
}

func TestSignupEndpoint_ValidationFailure(t *testing.T) {
	router := newRouter(&fakeService{})

	body := validSignupBody()
	body["email"] = "not-an-email"
	body["id"] = "not-a-uuid"

	w := postJSON(t, router, "/signup", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Status  string `json:"status"`
			Details []any  `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_INPUT", resp.Error.Status)
	assert.NotEmpty(t, resp.Error.Details)
}

func TestSignupEndpoint_UnknownFaultIsOpaque(t *testing.T) {
	router := newRouter(&fakeService{signupErr: assert.AnError})

	w := postJSON(t, router, "/signup", validSignupBody())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL")
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestLoginEndpoint_Success(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	router := newRouter(&fakeService{loginRes: &LoginResult{
		ID:         signupID,
		Email:      "user1@example.com",
		Username:   "user1",
		CreateTime: now,
		UpdateTime: now,
	}})

	w := postJSON(t, router, "/login", map[string]string{
		"email":    "user1@example.com",
		"password": "password1",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user1@example.com")
}

func TestLoginEndpoint_AuthenticationFail(t *testing.T) {
	router := newRouter(&fakeService{loginErr: apperror.New(apperror.AuthenticationFail)})

	w := postJSON(t, router, "/login", map[string]string{
		"email":    "user1@example.com",
		"password": "password2",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTHENTICATION_FAIL")
}

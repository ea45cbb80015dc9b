package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/dreamline/mentorlink/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Success bool            `json:"success"`
	Error   dto.ErrorDetail `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
}

func authRouter(jwt *auth.JWTService) *gin.Engine {
	m := NewAuthMiddleware(jwt)
	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, Identity(c))
	})
	r.GET("/mentor-only", m.JWTAuth(), m.RoleRequired(models.RoleMentor), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	jwt := newJWT()
	r := authRouter(jwt)

	token, _, err := jwt.GenerateAccessToken(&models.User{ID: "u1", Role: models.RoleStudent})
	require.NoError(t, err)
	foreign, _, err := auth.NewJWTService(auth.JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour}).
		GenerateAccessToken(&models.User{ID: "u1", Role: models.RoleStudent})
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		header   string
		wantCode int
		wantErr  dto.ErrorCode
	}{
		{"missing", "/me", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"wrong secret", "/me", "Bearer " + foreign, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"garbage", "/me", "Bearer abc.def", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"valid header", "/me", "Bearer " + token, http.StatusOK, ""},
		{"query token", "/me?token=" + token, "", http.StatusOK, ""},
		{"role mismatch", "/mentor-only", "Bearer " + token, http.StatusForbidden, dto.ErrorCodeForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantErr != "" {
				assert.Equal(t, tc.wantErr, decodeError(t, w).Error.Code)
				return
			}
			var identity models.Identity
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &identity))
			assert.Equal(t, "u1", identity.UserID)
			assert.Equal(t, models.RoleStudent, identity.Role)
		})
	}
}

func TestRoleRequiredAllowsRole(t *testing.T) {
	jwt := newJWT()
	token, _, err := jwt.GenerateAccessToken(&models.User{ID: "m1", Role: models.RoleMentor})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/mentor-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authRouter(jwt).ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandleAPIError(t *testing.T) {
	next := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantError dto.ErrorCode
		check     func(t *testing.T, d dto.ErrorDetail)
	}{
		{
			name:      "validation carries field",
			err:       apperrors.NewValidationError("title", "Title is required"),
			wantCode:  http.StatusBadRequest,
			wantError: dto.ErrorCodeValidationFailed,
			check: func(t *testing.T, d dto.ErrorDetail) {
				assert.Equal(t, "title", d.Field)
				assert.Equal(t, "Title is required", d.Message)
			},
		},
		{"self request", apperrors.NewCustomError(apperrors.ErrSelfRequest, "no"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, nil},
		{"unauthenticated", apperrors.NewUnauthenticatedError(), http.StatusUnauthorized, dto.ErrorCodeUnauthorized, nil},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, nil},
		{"forbidden", apperrors.NewForbiddenError("not yours"), http.StatusForbidden, dto.ErrorCodeForbidden, nil},
		{"not found wrapped", fmt.Errorf("load: %w", apperrors.ErrUserNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, nil},
		{
			name:      "cooldown",
			err:       apperrors.NewCooldownError(next),
			wantCode:  http.StatusConflict,
			wantError: dto.ErrorCodeCooldownActive,
			check: func(t *testing.T, d dto.ErrorDetail) {
				details, ok := d.Details.(map[string]interface{})
				require.True(t, ok)
				assert.Equal(t, next.Format(time.RFC3339), details["nextAllowedAt"])
			},
		},
		{"active assignment", apperrors.ErrActiveAssignmentExists, http.StatusConflict, dto.ErrorCodeActiveAssignmentExists, nil},
		{"transition", apperrors.ErrInvalidTransition, http.StatusConflict, dto.ErrorCodeInvalidTransition, nil},
		{
			name: "duplicate request",
			err: apperrors.NewCustomError(apperrors.ErrDuplicatePendingRequest, "pending").
				WithDetails(map[string]interface{}{"requestId": "r1"}),
			wantCode:  http.StatusConflict,
			wantError: dto.ErrorCodeDuplicatePendingRequest,
			check: func(t *testing.T, d dto.ErrorDetail) {
				assert.Equal(t, map[string]interface{}{"requestId": "r1"}, d.Details)
			},
		},
		{"email taken", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, nil},
		{
			name:      "unknown hides message",
			err:       errors.New("pq: connection refused"),
			wantCode:  http.StatusInternalServerError,
			wantError: dto.ErrorCodeInternalServer,
			check: func(t *testing.T, d dto.ErrorDetail) {
				assert.NotContains(t, d.Message, "pq")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tc.err)

			assert.Equal(t, tc.wantCode, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tc.wantError, body.Error.Code)
			if tc.check != nil {
				tc.check(t, body.Error)
			}
		})
	}
}

func TestValidateJSON(t *testing.T) {
	r := gin.New()
	r.POST("/rate", ValidateJSON[dto.RateMentorRequest](), func(c *gin.Context) {
		body, ok := ValidatedBody[dto.RateMentorRequest](c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"value": body.Value})
	})

	post := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/rate", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"value": 4}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"value": 4}`, w.Body.String())

	w = post(`{"value": 9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, decodeError(t, w).Error.Code)

	w = post(`not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

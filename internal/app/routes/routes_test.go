package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dreamline/mentorlink/internal/app/controllers"
	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/repositories/inmem"
	"github.com/dreamline/mentorlink/internal/app/services"
	"github.com/dreamline/mentorlink/internal/middleware"
	"github.com/dreamline/mentorlink/internal/pkg/activity"
	"github.com/dreamline/mentorlink/internal/pkg/auth"
	"github.com/dreamline/mentorlink/internal/pkg/filestorage"
	"github.com/dreamline/mentorlink/internal/pkg/logger"
	"github.com/dreamline/mentorlink/internal/pkg/websocket"
	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	t      *testing.T
	router *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.BcryptCost = bcrypt.MinCost

	db, err := inmem.Open()
	require.NoError(t, err)
	repos := db.Repositories()

	hub := websocket.NewHub(logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	storage, err := filestorage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	jwt := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	svc := services.NewServices(services.Deps{
		Repos:    repos,
		JWT:      jwt,
		Storage:  storage,
		Hub:      hub,
		Activity: activity.Nop{},
		Location: time.UTC,
		Logger:   logger.Nop(),
	})

	router := gin.New()
	SetupRouter(router, Controllers{
		Auth:       controllers.NewAuthController(svc.Auth, logger.Nop()),
		User:       controllers.NewUserController(svc.Users, svc.Requests),
		Request:    controllers.NewRequestController(svc.Requests),
		Chat:       controllers.NewChatController(svc.Chats, websocket.NewHandler(nil, logger.Nop()), logger.Nop()),
		Assignment: controllers.NewAssignmentController(svc.Assignments),
		Rating:     controllers.NewRatingController(svc.Ratings),
		Post:       controllers.NewPostController(svc.Posts),
		Category:   controllers.NewCategoryController(),
		Health: controllers.NewHealthController(map[string]controllers.HealthCheck{
			"database": func(context.Context) error { return nil },
		}),
	}, middleware.NewAuthMiddleware(jwt))

	return &testApp{t: t, router: router}
}

// do sends a JSON request and decodes the envelope's data into out
func (a *testApp) do(method, path, token string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if out != nil && w.Code < 300 {
		var env struct {
			Success bool            `json:"success"`
			Data    json.RawMessage `json:"data"`
		}
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
		require.True(a.t, env.Success)
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorCode {
	t.Helper()
	var env dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func (a *testApp) register(name string, role models.Role) (string, string) {
	a.t.Helper()
	var resp dto.AuthResponse
	w := a.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email:    name + "@example.com",
		Password: "correct-horse",
		Name:     name,
		Age:      25,
		Role:     role,
		Major:    "IT",
		Middle:   "Software",
	}, &resp)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return resp.User.ID, resp.Token.AccessToken
}

func (a *testApp) connect(studentToken, mentorID, mentorToken string) string {
	a.t.Helper()
	var req dto.ContactRequestResponse
	w := a.do(http.MethodPost, "/api/v1/requests", studentToken, dto.CreateContactRequest{To: mentorID}, &req)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var accepted dto.AcceptRequestResponse
	w = a.do(http.MethodPost, "/api/v1/requests/"+req.ID+"/accept", mentorToken, nil, &accepted)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return accepted.Chat.ID
}

func TestPublicRoutes(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/v1/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	var tree []models.CategoryNode
	w = app.do(http.MethodGet, "/api/v1/categories", "", nil, &tree)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, tree)

	w = app.do(http.MethodGet, "/api/v1/users/me", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email": "bad", "password": "x", "name": "n", "role": "admin", "major": "IT",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, errorCode(t, w))
}

func TestLoginAndProfile(t *testing.T) {
	app := newTestApp(t)
	app.register("kim", models.RoleStudent)

	var resp dto.AuthResponse
	w := app.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "KIM@example.com", Password: "correct-horse"}, &resp)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var me dto.UserResponse
	w = app.do(http.MethodGet, "/api/v1/users/me", resp.Token.AccessToken, nil, &me)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kim@example.com", me.Email)

	w = app.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "kim@example.com", Password: "wrong-horse"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, errorCode(t, w))
}

func TestMentoringFlow(t *testing.T) {
	app := newTestApp(t)
	mentorID, mentorToken := app.register("mentor", models.RoleMentor)
	_, studentToken := app.register("student", models.RoleStudent)

	var mentors []dto.UserResponse
	w := app.do(http.MethodGet, "/api/v1/mentors?major=IT", studentToken, nil, &mentors)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mentors, 1)
	assert.Equal(t, mentorID, mentors[0].ID)

	chatID := app.connect(studentToken, mentorID, mentorToken)

	var msg models.ChatMessage
	w = app.do(http.MethodPost, "/api/v1/chats/"+chatID+"/messages", studentToken, dto.SendMessageRequest{Text: "hello"}, &msg)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var list dto.ChatMessageListResponse
	w = app.do(http.MethodGet, "/api/v1/chats/"+chatID+"/messages", mentorToken, nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, list.Messages, 1)
	assert.Equal(t, msg.ID, list.Messages[0].ID)

	var created models.Assignment
	w = app.do(http.MethodPost, "/api/v1/chats/"+chatID+"/assignment", studentToken, dto.CreateAssignmentRequest{Title: "x"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.do(http.MethodPost, "/api/v1/chats/"+chatID+"/assignment", mentorToken, dto.CreateAssignmentRequest{Title: "Write tests"}, &created)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = app.do(http.MethodPost, "/api/v1/chats/"+chatID+"/assignment", mentorToken, dto.CreateAssignmentRequest{Title: "Another"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrorCodeActiveAssignmentExists, errorCode(t, w))

	var rating dto.RatingResponse
	w = app.do(http.MethodPost, "/api/v1/mentors/"+mentorID+"/ratings", studentToken, dto.RateMentorRequest{Value: 4}, &rating)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 54, rating.Summary.Sum)

	w = app.do(http.MethodPost, "/api/v1/mentors/"+mentorID+"/ratings", studentToken, dto.RateMentorRequest{Value: 4}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrorCodeCooldownActive, errorCode(t, w))

	w = app.do(http.MethodPost, "/api/v1/mentors/"+mentorID+"/ratings", studentToken, map[string]int{"value": 7}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBoardRoutes(t *testing.T) {
	app := newTestApp(t)
	_, token := app.register("student", models.RoleStudent)

	var post dto.PostResponse
	w := app.do(http.MethodPost, "/api/v1/posts", token, dto.CreatePostRequest{Major: "IT", Title: "Go or Rust?"}, &post)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.PostQuestion, post.Category)

	var like dto.LikeResponse
	w = app.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/like", token, nil, &like)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, like.Liked)

	w = app.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/comments", token, dto.CreateCommentRequest{Text: "Go"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var found []dto.PostResponse
	w = app.do(http.MethodGet, "/api/v1/posts/search?q=rust", token, nil, &found)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].LikeCount)
}

func TestChatStream(t *testing.T) {
	app := newTestApp(t)
	mentorID, mentorToken := app.register("mentor", models.RoleMentor)
	_, studentToken := app.register("student", models.RoleStudent)
	chatID := app.connect(studentToken, mentorID, mentorToken)

	srv := httptest.NewServer(app.router)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/chats/" + chatID + "/ws?token=" + mentorToken

	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	w := app.do(http.MethodPost, "/api/v1/chats/"+chatID+"/messages", studentToken, dto.SendMessageRequest{Text: "over http"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.WriteJSON(websocket.Inbound{Type: websocket.InboundSend, Text: "over socket"}))

	var texts []string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for len(texts) < 2 {
		var evt websocket.Event
		require.NoError(t, conn.ReadJSON(&evt))
		if evt.Type != services.EventMessageCreated {
			continue
		}
		var msg models.ChatMessage
		require.NoError(t, json.Unmarshal(evt.Payload, &msg))
		texts = append(texts, msg.Text)
	}
	assert.Equal(t, []string{"over http", "over socket"}, texts)

	_, _, err = gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/chats/"+chatID+"/ws", nil)
	assert.Error(t, err)
}

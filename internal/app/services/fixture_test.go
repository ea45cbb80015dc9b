package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/repositories"
	"github.com/dreamline/mentorlink/internal/app/repositories/inmem"
	"github.com/dreamline/mentorlink/internal/pkg/activity"
	"github.com/dreamline/mentorlink/internal/pkg/auth"
	"github.com/dreamline/mentorlink/internal/pkg/filestorage"
	"github.com/dreamline/mentorlink/internal/pkg/logger"
	"github.com/dreamline/mentorlink/internal/pkg/websocket"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var day0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []activity.Event
}

func (p *recordingPublisher) Publish(evt activity.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	repos    *repositories.Repositories
	svc      *Services
	hub      *websocket.Hub
	clock    *fakeClock
	activity *recordingPublisher
	storage  *filestorage.LocalStorage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	auth.BcryptCost = bcrypt.MinCost

	clock := &fakeClock{now: day0}
	db, err := inmem.Open()
	require.NoError(t, err)
	db.SetClock(clock.Now)
	repos := db.Repositories()

	hub := websocket.NewHub(logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	storage, err := filestorage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	pub := &recordingPublisher{}
	svc := NewServices(Deps{
		Repos:    repos,
		JWT:      auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"}),
		Storage:  storage,
		Hub:      hub,
		Activity: pub,
		Location: time.UTC,
		Logger:   logger.Nop(),
		Now:      clock.Now,
	})

	return &fixture{
		t:        t,
		ctx:      context.Background(),
		repos:    repos,
		svc:      svc,
		hub:      hub,
		clock:    clock,
		activity: pub,
		storage:  storage,
	}
}

func (f *fixture) register(name string, role models.Role, major string) models.Identity {
	f.t.Helper()
	resp, err := f.svc.Auth.Register(f.ctx, &dto.RegisterRequest{
		Email:    name + "@example.com",
		Password: "correct-horse",
		Name:     name,
		Age:      30,
		Role:     role,
		Major:    major,
	})
	require.NoError(f.t, err)
	return models.Identity{UserID: resp.User.ID, Role: role}
}

// connect runs the request workflow to an accepted request and returns the channel id
func (f *fixture) connect(student, mentor models.Identity) string {
	f.t.Helper()
	req, err := f.svc.Requests.Create(f.ctx, student, mentor.UserID)
	require.NoError(f.t, err)
	accepted, err := f.svc.Requests.Accept(f.ctx, mentor, req.ID)
	require.NoError(f.t, err)
	return accepted.Chat.ID
}

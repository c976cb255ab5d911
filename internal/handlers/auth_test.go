package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/motominder/motominder/internal/auth"
	"github.com/motominder/motominder/internal/db"
	"github.com/motominder/motominder/internal/models"
)

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newAuthTestHandler(t *testing.T) (*AuthHandler, *MockUserCollection, *auth.Service) {
	t.Helper()
	authService, err := auth.NewService()
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}
	mockUsers := new(MockUserCollection)
	return NewAuthHandler(authService, mockUsers), mockUsers, authService
}

func postJSON(target string, payload interface{}) *http.Request {
	data, _ := json.Marshal(payload)
	return httptest.NewRequest(http.MethodPost, target, bytes.NewBuffer(data))
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("successful login", func(t *testing.T) {
		handler, mockUsers, authService := newAuthTestHandler(t)

		passwordHash, err := authService.HashPassword("password123")
		assert.NoError(t, err)
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Username:     "rider",
			PasswordHash: passwordHash,
			Role:         models.RoleOwner,
			IsActive:     true,
		}
		mockUsers.On("FindUserByUsername", mock.Anything, "rider").Return(user, nil)
		mockUsers.On("UpdateLastLogin", mock.Anything, user.ID.Hex()).Return(nil)

		w := httptest.NewRecorder()
		handler.Login(w, postJSON("/api/auth/login", models.LoginRequest{Username: "rider", Password: "password123"}))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.LoginResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "rider", resp.User.Username)
		mockUsers.AssertExpectations(t)

		// The issued token must carry the owner id used for scoping.
		claims, err := authService.ValidateToken(resp.Token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), claims.OwnerID)
	})

	t.Run("wrong password", func(t *testing.T) {
		handler, mockUsers, authService := newAuthTestHandler(t)

		passwordHash, _ := authService.HashPassword("password123")
		user := &models.User{ID: primitive.NewObjectID(), Username: "rider", PasswordHash: passwordHash, IsActive: true}
		mockUsers.On("FindUserByUsername", mock.Anything, "rider").Return(user, nil)

		w := httptest.NewRecorder()
		handler.Login(w, postJSON("/api/auth/login", models.LoginRequest{Username: "rider", Password: "wrong"}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		handler, mockUsers, _ := newAuthTestHandler(t)
		mockUsers.On("FindUserByUsername", mock.Anything, "ghost").Return(nil, db.ErrNotFound)

		w := httptest.NewRecorder()
		handler.Login(w, postJSON("/api/auth/login", models.LoginRequest{Username: "ghost", Password: "password123"}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		handler, mockUsers, authService := newAuthTestHandler(t)

		passwordHash, _ := authService.HashPassword("password123")
		user := &models.User{ID: primitive.NewObjectID(), Username: "rider", PasswordHash: passwordHash, IsActive: false}
		mockUsers.On("FindUserByUsername", mock.Anything, "rider").Return(user, nil)

		w := httptest.NewRecorder()
		handler.Login(w, postJSON("/api/auth/login", models.LoginRequest{Username: "rider", Password: "password123"}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing credentials", func(t *testing.T) {
		handler, _, _ := newAuthTestHandler(t)

		w := httptest.NewRecorder()
		handler.Login(w, postJSON("/api/auth/login", models.LoginRequest{Username: "rider"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		handler, _, _ := newAuthTestHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	registerReq := models.RegisterRequest{
		Username:  "newrider",
		Email:     "new@example.com",
		Password:  "password123",
		FirstName: "New",
		LastName:  "Rider",
	}

	t.Run("successful registration creates an owner", func(t *testing.T) {
		handler, mockUsers, _ := newAuthTestHandler(t)

		mockUsers.On("FindUserByUsername", mock.Anything, "newrider").Return(nil, db.ErrNotFound)
		mockUsers.On("FindUserByEmail", mock.Anything, "new@example.com").Return(nil, db.ErrNotFound)
		mockUsers.On("InsertUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Role == models.RoleOwner && u.Username == "newrider" && u.IsActive
		})).Return(nil)
		mockUsers.On("UpdateLastLogin", mock.Anything, mock.Anything).Return(nil)

		w := httptest.NewRecorder()
		handler.Register(w, postJSON("/api/auth/register", registerReq))

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp models.LoginResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, models.RoleOwner, resp.User.Role)
		mockUsers.AssertExpectations(t)
	})

	t.Run("duplicate username", func(t *testing.T) {
		handler, mockUsers, _ := newAuthTestHandler(t)

		existing := &models.User{ID: primitive.NewObjectID(), Username: "newrider"}
		mockUsers.On("FindUserByUsername", mock.Anything, "newrider").Return(existing, nil)

		w := httptest.NewRecorder()
		handler.Register(w, postJSON("/api/auth/register", registerReq))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		handler, mockUsers, _ := newAuthTestHandler(t)

		existing := &models.User{ID: primitive.NewObjectID(), Email: "new@example.com"}
		mockUsers.On("FindUserByUsername", mock.Anything, "newrider").Return(nil, db.ErrNotFound)
		mockUsers.On("FindUserByEmail", mock.Anything, "new@example.com").Return(existing, nil)

		w := httptest.NewRecorder()
		handler.Register(w, postJSON("/api/auth/register", registerReq))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		handler, _, _ := newAuthTestHandler(t)

		bad := registerReq
		bad.Email = "not-an-email"
		w := httptest.NewRecorder()
		handler.Register(w, postJSON("/api/auth/register", bad))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		handler, _, _ := newAuthTestHandler(t)

		bad := registerReq
		bad.Password = "short"
		w := httptest.NewRecorder()
		handler.Register(w, postJSON("/api/auth/register", bad))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short username", func(t *testing.T) {
		handler, _, _ := newAuthTestHandler(t)

		bad := registerReq
		bad.Username = "ab"
		w := httptest.NewRecorder()
		handler.Register(w, postJSON("/api/auth/register", bad))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		handler, _, _ := newAuthTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{bad json"))
		w := httptest.NewRecorder()
		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

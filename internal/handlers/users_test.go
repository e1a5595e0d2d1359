package handlers_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/sentinelauth/sentinel/internal/handlers"
	"github.com/sentinelauth/sentinel/internal/models"
	"github.com/sentinelauth/sentinel/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestCreateUser_Success(t *testing.T) {
	mock := &handlers.MockUserProvisioner{
		CreateUserFunc: func(ctx context.Context, username, password, role string) (*services.UserResponse, error) {
			assert.Equal(t, "new@example.com", username)
			assert.Equal(t, "user", role)
			return &services.UserResponse{ID: "u1", Username: username, Role: role}, nil
		},
	}

	handler := handlers.NewUserHandler(mock)
	req := handlers.NewTestRequest(t, "POST", "/users", handlers.CreateUserRequest{
		Username: "New@Example.com",
		Password: "Str0ng!Passphrase",
		Role:     "user",
	})

	w := httptest.NewRecorder()
	handler.CreateUser(w, req)

	var resp services.UserResponse
	handlers.AssertJSONResponse(t, w, 201, &resp)
	assert.Equal(t, "u1", resp.ID)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	mock := &handlers.MockUserProvisioner{
		CreateUserFunc: func(ctx context.Context, username, password, role string) (*services.UserResponse, error) {
			return nil, models.ErrConflict
		},
	}

	handler := handlers.NewUserHandler(mock)
	req := handlers.NewTestRequest(t, "POST", "/users", handlers.CreateUserRequest{
		Username: "taken@example.com",
		Password: "Str0ng!Passphrase",
	})

	w := httptest.NewRecorder()
	handler.CreateUser(w, req)

	handlers.AssertErrorResponse(t, w, 409, "conflict")
}

func TestCreateUser_WeakPassword(t *testing.T) {
	mock := &handlers.MockUserProvisioner{
		CreateUserFunc: func(ctx context.Context, username, password, role string) (*services.UserResponse, error) {
			return nil, errors.New("invalid password: must be at least 12 characters")
		},
	}

	handler := handlers.NewUserHandler(mock)
	req := handlers.NewTestRequest(t, "POST", "/users", handlers.CreateUserRequest{
		Username: "new@example.com",
		Password: "short",
	})

	w := httptest.NewRecorder()
	handler.CreateUser(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestCreateUser_InvalidRoleRejected(t *testing.T) {
	called := false
	mock := &handlers.MockUserProvisioner{
		CreateUserFunc: func(ctx context.Context, username, password, role string) (*services.UserResponse, error) {
			called = true
			return nil, nil
		},
	}

	handler := handlers.NewUserHandler(mock)
	req := handlers.NewTestRequest(t, "POST", "/users", handlers.CreateUserRequest{
		Username: "new@example.com",
		Password: "Str0ng!Passphrase",
		Role:     "superuser",
	})

	w := httptest.NewRecorder()
	handler.CreateUser(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
	assert.False(t, called)
}

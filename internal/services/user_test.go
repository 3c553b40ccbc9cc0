package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/utils"
)

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(logger.NewNop(), env.userRepo)

	user, err := svc.Create(context.Background(), map[string]interface{}{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.NotEqual(t, "s3cret", user.PasswordHash)
	require.True(t, utils.CheckPassword(user.PasswordHash, "s3cret"))
	require.NotNil(t, user.ExternalLogin)

	stored, err := env.userRepo.GetByUsername(context.Background(), nil, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestCreateUserRejectsMissingFields(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(logger.NewNop(), env.userRepo)

	_, err := svc.Create(context.Background(), map[string]interface{}{
		"username": "alice",
		"email":    "alice@example.com",
	})
	apiErr := requireAPIError(t, err, http.StatusBadRequest)
	require.Equal(t, "Must include username, email and password fields", apiErr.Message)
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(logger.NewNop(), env.userRepo)
	env.seedUser(t, "alice", false)

	_, err := svc.Create(context.Background(), map[string]interface{}{
		"username": "alice",
		"email":    "fresh@example.com",
		"password": "s3cret",
	})
	apiErr := requireAPIError(t, err, http.StatusBadRequest)
	require.Equal(t, "Please use a different username", apiErr.Message)

	_, err = svc.Create(context.Background(), map[string]interface{}{
		"username": "fresh",
		"email":    "alice@example.com",
		"password": "s3cret",
	})
	apiErr = requireAPIError(t, err, http.StatusBadRequest)
	require.Equal(t, "Please use a different email address", apiErr.Message)
}

func TestUpdateUserSkipsUnchangedValues(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(logger.NewNop(), env.userRepo)
	user := env.seedUser(t, "alice", false)

	// Re-submitting the current username must not trip the duplicate check.
	updated, err := svc.Update(context.Background(), user.ID, map[string]interface{}{
		"username": "alice",
		"email":    "new@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", updated.Email)
}

func TestUpdateUserRejectsTakenUsername(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(logger.NewNop(), env.userRepo)
	env.seedUser(t, "alice", false)
	bob := env.seedUser(t, "bob", false)

	_, err := svc.Update(context.Background(), bob.ID, map[string]interface{}{"username": "alice"})
	apiErr := requireAPIError(t, err, http.StatusBadRequest)
	require.Equal(t, "Please use a different username", apiErr.Message)
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(logger.NewNop(), env.userRepo)
	user := env.seedUser(t, "alice", false)

	updated, err := svc.Update(context.Background(), user.ID, map[string]interface{}{"password": "newpass"})
	require.NoError(t, err)
	require.True(t, utils.CheckPassword(updated.PasswordHash, "newpass"))
}

func TestUpdateUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(logger.NewNop(), env.userRepo)

	_, err := svc.Update(context.Background(), uuid.New(), map[string]interface{}{"username": "ghost"})
	requireAPIError(t, err, http.StatusNotFound)
}

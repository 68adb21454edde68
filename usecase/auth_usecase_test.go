package usecase

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmpberger88/EnigmaTalk/config/common"
	"github.com/fmpberger88/EnigmaTalk/dto/req"
	"github.com/fmpberger88/EnigmaTalk/exception"
	"github.com/fmpberger88/EnigmaTalk/repository"
	"github.com/fmpberger88/EnigmaTalk/security"
)

func newAuthFixture(t *testing.T) (*repository.MemoryStore, AuthUsecase) {
	t.Helper()
	v := viper.New()
	v.Set("JWT_SECRET", "test-secret")
	jwtService := security.NewJWT(&common.Config{Viper: v})

	store := repository.NewMemoryStore()
	return store, NewAuthUsecase(store, validator.New(), quietLogger(), jwtService)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	_, auth := newAuthFixture(t)

	registered, err := auth.RegisterUser(ctx, &req.RegisterRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.Username)
	assert.NotEmpty(t, registered.ID)

	login, err := auth.LoginUser(ctx, &req.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)

	user, err := auth.CurrentUser(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	_, auth := newAuthFixture(t)

	_, err := auth.RegisterUser(ctx, &req.RegisterRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	_, err = auth.RegisterUser(ctx, &req.RegisterRequest{Username: "alice", Password: "different"})
	assert.ErrorIs(t, err, exception.ErrConflict)
}

func TestRegister_ValidationFailure(t *testing.T) {
	ctx := context.Background()
	_, auth := newAuthFixture(t)

	_, err := auth.RegisterUser(ctx, &req.RegisterRequest{Username: "al", Password: "x"})
	assert.ErrorIs(t, err, exception.ErrInvalidRequest)
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	_, auth := newAuthFixture(t)

	_, err := auth.RegisterUser(ctx, &req.RegisterRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	_, err = auth.LoginUser(ctx, &req.LoginRequest{Username: "alice", Password: "nope"})
	assert.ErrorIs(t, err, exception.ErrUnauthenticated)
}

func TestLogin_UnknownUser(t *testing.T) {
	ctx := context.Background()
	_, auth := newAuthFixture(t)

	_, err := auth.LoginUser(ctx, &req.LoginRequest{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, exception.ErrUnauthenticated)
}

func TestCurrentUser_InvalidToken(t *testing.T) {
	ctx := context.Background()
	_, auth := newAuthFixture(t)

	_, err := auth.CurrentUser(ctx, "garbage")
	assert.ErrorIs(t, err, exception.ErrUnauthenticated)
}

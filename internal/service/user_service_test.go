package service

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/food-share-service/internal/dto"
	"github.com/haierkeys/food-share-service/pkg/app"
	"github.com/haierkeys/food-share-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, registerEnabled bool) UserService {
	t.Helper()
	tm := app.NewTokenManager(app.TokenConfig{
		SecretKey: "test-secret",
		Expiry:    time.Hour,
	})
	return NewUserService(Options{Store: newTestStore(t)}, tm, registerEnabled)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newUserService(t, true)
	ctx := context.Background()

	token, err := svc.Register(ctx, &dto.UserRegisterRequest{
		Email:    "alice@example.com",
		Nickname: "alice",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotZero(t, token.UID)
	assert.NotEmpty(t, token.Token)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, &dto.UserRegisterRequest{
			Email:    "alice@example.com",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, code.ErrorUserExist)
	})

	t.Run("login", func(t *testing.T) {
		got, err := svc.Login(ctx, &dto.UserLoginRequest{
			Email:    "alice@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.Equal(t, token.UID, got.UID)
		assert.NotEmpty(t, got.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &dto.UserLoginRequest{
			Email:    "alice@example.com",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, code.ErrorUserLoginFailed)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &dto.UserLoginRequest{
			Email:    "nobody@example.com",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, code.ErrorUserLoginFailed)
	})
}

func TestRegisterDisabled(t *testing.T) {
	svc := newUserService(t, false)

	_, err := svc.Register(context.Background(), &dto.UserRegisterRequest{
		Email:    "bob@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, code.ErrorUserRegisterDisabled)
}

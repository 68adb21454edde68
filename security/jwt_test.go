package security

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmpberger88/EnigmaTalk/config/common"
	"github.com/fmpberger88/EnigmaTalk/entity"
)

func newTestJWT(secret string) *JWT {
	v := viper.New()
	v.Set("JWT_SECRET", secret)
	return NewJWT(&common.Config{Viper: v})
}

func TestJWT_RoundTrip(t *testing.T) {
	jwtService := newTestJWT("test-secret")

	user := &entity.User{Username: "alice"}
	user.ID = "user-1"

	token, err := jwtService.GenerateToken(user)
	require.NoError(t, err)

	userID, err := jwtService.GetUserIdFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	claims, err := jwtService.VerifyJwtToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims["username"])
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	user := &entity.User{Username: "alice"}
	user.ID = "user-1"

	token, err := newTestJWT("right-secret").GenerateToken(user)
	require.NoError(t, err)

	_, err = newTestJWT("wrong-secret").GetUserIdFromToken(token)
	assert.Error(t, err)
}

func TestJWT_RejectsGarbageToken(t *testing.T) {
	_, err := newTestJWT("test-secret").GetUserIdFromToken("not.a.token")
	assert.Error(t, err)
}

package chat

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions(t *testing.T) {
	sessions := NewSessions("test-secret", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		session, err := sessions.Issue()
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 2*time.Second)

		id, err := sessions.Validate(session.Token)
		require.NoError(t, err)
		assert.Equal(t, session.ID, id)
	})

	t.Run("wrong secret", func(t *testing.T) {
		session, err := NewSessions("other-secret", time.Hour).Issue()
		require.NoError(t, err)

		_, err = sessions.Validate(session.Token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"session_id": "abc",
			"exp":        time.Now().Add(-time.Minute).Unix(),
		})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = sessions.Validate(signed)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("missing session id", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Minute).Unix(),
		})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = sessions.Validate(signed)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := sessions.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

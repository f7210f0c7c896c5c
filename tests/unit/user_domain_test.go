package unit

import (
	"testing"
	"time"

	"brand_collab_service/internal/identity/domain"
	"brand_collab_service/pkg/encrypt"

	"github.com/stretchr/testify/assert"
)

func TestUserPasswordMatch(t *testing.T) {
	hashed, err := encrypt.HashPassword("pass1234")
	assert.NoError(t, err)

	user := domain.User{
		ID:       1,
		Email:    "brand@example.com",
		Password: hashed,
	}

	assert.True(t, user.IsPasswordMatch("pass1234") == nil, "should match correct password")
	assert.False(t, user.IsPasswordMatch("wrongpass") == nil, "should not match incorrect password")
}

func TestUserSessionExpiration(t *testing.T) {
	session := domain.UserSession{
		Token:        "abcd1234",
		UserID:       "1",
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
		ExpiredAt:    time.Now().Add(-1 * time.Minute),
	}

	assert.True(t, session.IsExpired(), "session should be expired")

	session.ExpiredAt = time.Now().Add(30 * time.Minute)
	assert.False(t, session.IsExpired(), "session should still be live")
}

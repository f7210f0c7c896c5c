package domain

import (
	"time"

	"brand_collab_service/pkg/encrypt"
)

// UserStatus represents the account state
type UserStatus int

// status: 0=offline, 1=online, 2=ban, 3=delete
const (
	// UserStatusOffLine account with no live session
	UserStatusOffLine UserStatus = iota
	// UserStatusOnLine account with at least one live session
	UserStatusOnLine
	// UserStatusBan account blocked by an operator
	UserStatusBan
	// UserStatusDelete account removed
	UserStatusDelete
)

// User is a brand or influencer account
type User struct {
	ID          int64
	UserID      string
	Email       string
	Password    string
	DisplayName string
	Role        string
	Status      UserStatus
}

// UserSession is the live session stored in redis per user
type UserSession struct {
	Token        string    `json:"Token"`
	UserID       string    `json:"UserID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// IsPasswordMatch checks the candidate against the stored bcrypt hash
func (u *User) IsPasswordMatch(inputPwd string) error {
	err := encrypt.CheckPassword(u.Password, inputPwd)
	return err
}

// IsExpired checks whether the session passed its expiry
func (s *UserSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// UserQuery join conditions are used to query users
type UserQuery struct {
	ID     *int64  `db:"id"`
	UserID *string `db:"user_id"`
	Email  *string `db:"email"`
}

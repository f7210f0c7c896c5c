package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brand_collab_service/internal/identity/domain"
	"brand_collab_service/internal/identity/repository"
	"brand_collab_service/pkg/database"
	errprocess "brand_collab_service/pkg/err"
	"brand_collab_service/pkg/logger"
	token "brand_collab_service/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IdentityUseCase exposes account and session operations
type IdentityUseCase interface {
	Register(ctx context.Context, email, password, displayName, role string) (string, error)
	FindUser(ctx context.Context, param *domain.UserQuery) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	ForceLogout(ctx context.Context, userID string) error
	CheckSessionTimeout(ctx context.Context, token string) (bool, error)
	Resolve(ctx context.Context, credential string) (string, error)
	Exists(ctx context.Context, userID string) (bool, error)
}

type identityUseCase struct {
	userRepo     repository.UserRepository
	sessionTTL   time.Duration
	redisRepo    database.RedisRepository[domain.UserSession]
	hashPassword func(string) (string, error)
}

// NewIdentityUseCase create a new IdentityUseCase
func NewIdentityUseCase(userRepo repository.UserRepository,
	sessionTTL time.Duration,
	redisRepo database.RedisRepository[domain.UserSession],
	hashPassword func(string) (string, error),
) IdentityUseCase {
	return &identityUseCase{
		userRepo:     userRepo,
		sessionTTL:   sessionTTL,
		redisRepo:    redisRepo,
		hashPassword: hashPassword,
	}
}

// Register creates a brand or influencer account
func (m *identityUseCase) Register(ctx context.Context, email, password, displayName, role string) (string, error) {
	if role != string(token.RoleBrand) && role != string(token.RoleInfluencer) {
		return "", errprocess.InvalidArgument("role must be brand or influencer")
	}

	if _, err := m.userRepo.FindByUser(ctx, &domain.UserQuery{Email: &email}); err == nil {
		return "", errprocess.InvalidArgument("email already exists")
	}

	pw, err := m.hashPassword(password)
	if err != nil {
		logger.Log.Errorf("password err :", err)
		return "", errprocess.InvalidArgument(err.Error())
	}

	user := domain.User{
		UserID:      uuid.New().String(),
		Email:       email,
		Password:    pw,
		DisplayName: displayName,
		Role:        role,
	}

	logger.Log.Info(fmt.Sprintf("usecase Register : %s", user.UserID))

	if err := m.userRepo.CreateUser(ctx, &user); err != nil {
		return "", err
	}

	return user.UserID, nil
}

// FindUser queries a single user by the given conditions
func (m *identityUseCase) FindUser(ctx context.Context, param *domain.UserQuery) (*domain.User, error) {
	user, err := m.userRepo.FindByUser(ctx, param)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errprocess.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// Login checks credentials, issues a JWT and stores the session
func (m *identityUseCase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := m.userRepo.FindByUser(ctx, &domain.UserQuery{Email: &email})
	if err != nil {
		logger.Log.Error("email can't find")
		return "", errprocess.AuthenticationFailed("email or password is incorrect")
	}

	if err = user.IsPasswordMatch(password); err != nil {
		logger.Log.Error("password can't match")
		return "", errprocess.AuthenticationFailed("email or password is incorrect")
	}

	user.Status = domain.UserStatusOnLine

	t, err := token.GenerateJWTWrapper(user.UserID, user.Role)
	if err != nil {
		return "", err
	}
	now := time.Now()
	session := domain.UserSession{
		Token:        t,
		UserID:       user.UserID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(m.sessionTTL),
	}

	if err := m.redisRepo.Set(ctx, user.UserID, session, m.sessionTTL); err != nil {
		return "", err
	}

	if err := m.userRepo.UpdateUserStatus(ctx, user); err != nil {
		return "", err
	}

	return t, nil
}

// Logout drops the session named by the token
func (m *identityUseCase) Logout(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		logger.Log.Error("Logout err :", zap.String("err", err.Error()))
		return errprocess.AuthenticationFailed("invalid credential")
	}
	logger.Log.Debug("logout", zap.String("user token info", fmt.Sprintf("%v", tokenInfo)))

	m.redisRepo.Del(ctx, tokenInfo.UserID)

	if err := m.userRepo.UpdateUserStatus(ctx, &domain.User{
		UserID: tokenInfo.UserID,
		Status: domain.UserStatusOffLine,
	}); err != nil {
		return err
	}
	return nil
}

// ForceLogout clears every session of the user
func (m *identityUseCase) ForceLogout(ctx context.Context, userID string) error {
	m.redisRepo.Del(ctx, userID)

	if err := m.userRepo.UpdateUserStatus(ctx, &domain.User{
		UserID: userID,
		Status: domain.UserStatusOffLine,
	}); err != nil {
		return err
	}
	return nil
}

// CheckSessionTimeout reports whether the session behind the token ran out
func (m *identityUseCase) CheckSessionTimeout(ctx context.Context, t string) (bool, error) {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		logger.Log.Error("CheckSessionTimeout err :", zap.String("err", err.Error()))
		return true, errprocess.AuthenticationFailed("invalid credential")
	}
	logger.Log.Debug("CheckSessionTimeout", zap.String("user token info", fmt.Sprintf("%v", tokenInfo)))

	ttl, err := m.redisRepo.GetTTL(ctx, tokenInfo.UserID)
	if err != nil {
		return true, err
	}

	if ttl > 0 {
		return false, nil
	}
	return true, nil
}

// Resolve maps a raw credential to a user id.
// The token must parse and a live session must exist. Resolving counts
// as activity and slides the session window.
func (m *identityUseCase) Resolve(ctx context.Context, credential string) (string, error) {
	if credential == "" {
		return "", errprocess.AuthenticationFailed("missing credential")
	}

	tokenInfo, err := token.ParseJWTWrapper(credential)
	if err != nil {
		logger.Log.Error("Resolve err :", zap.String("err", err.Error()))
		return "", errprocess.AuthenticationFailed("invalid credential")
	}

	session, err := m.redisRepo.Get(ctx, tokenInfo.UserID)
	if err != nil {
		return "", errprocess.AuthenticationFailed("session not found")
	}
	if session.IsExpired() {
		return "", errprocess.AuthenticationFailed("session expired")
	}

	session.LastActivity = time.Now()
	session.ExpiredAt = session.LastActivity.Add(m.sessionTTL)
	if err := m.redisRepo.Set(ctx, tokenInfo.UserID, session, m.sessionTTL); err != nil {
		logger.Log.Warn("failed to refresh session", zap.String("user_id", tokenInfo.UserID), zap.Error(err))
	}

	return tokenInfo.UserID, nil
}

// Exists reports whether the user id belongs to a registered account
func (m *identityUseCase) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := m.userRepo.FindByUser(ctx, &domain.UserQuery{UserID: &userID})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

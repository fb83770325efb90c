package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/rogerio-castellano/inventory-dashboard/internal/obs"
	"github.com/rogerio-castellano/inventory-dashboard/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Manager owns the session lifecycle: Login creates one, Authenticate resolves it
// for each request, Logout drops it.
type Manager struct {
	users  repo.UserRepository
	store  SessionStore
	issuer *Issuer
	now    func() time.Time
}

func NewManager(users repo.UserRepository, store SessionStore, issuer *Issuer) *Manager {
	return &Manager{users: users, store: store, issuer: issuer, now: time.Now}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register creates a user with a bcrypt-hashed password.
func (m *Manager) Register(username, password, role string) (models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	return m.users.CreateUser(username, hash, role)
}

// Login checks the credentials and opens a new session.
func (m *Manager) Login(ctx context.Context, username, password string) (Session, string, error) {
	user, err := m.users.GetByUsername(username)
	if errors.Is(err, repo.ErrUserNotFound) {
		return Session{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Session{}, "", ErrInvalidCredentials
	}

	s := Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: m.now().Add(m.issuer.TTL()).Truncate(time.Second),
	}
	token, err := m.issuer.Issue(s)
	if err != nil {
		return Session{}, "", fmt.Errorf("sign token: %w", err)
	}
	if err := m.store.Save(ctx, s); err != nil {
		return Session{}, "", fmt.Errorf("save session: %w", err)
	}
	return s, token, nil
}

// Authenticate resolves the session a token points at. Any failure that can be tied
// to a session id invalidates that session.
func (m *Manager) Authenticate(ctx context.Context, token string) (Session, error) {
	claims, err := m.issuer.Parse(token)
	if err != nil {
		if claims.SessionID != "" {
			m.invalidate(ctx, claims.SessionID)
		}
		return Session{}, ErrSessionInvalid
	}

	s, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionInvalid) {
			obs.Logger.Error("session lookup failed", "sid", claims.SessionID, "err", err)
		}
		return Session{}, ErrSessionInvalid
	}
	if s.UserID != claims.UserID || s.Role != claims.Role || s.Expired(m.now()) {
		m.invalidate(ctx, s.ID)
		return Session{}, ErrSessionInvalid
	}
	return s, nil
}

func (m *Manager) Logout(ctx context.Context, s Session) error {
	return m.store.Delete(ctx, s.ID)
}

func (m *Manager) invalidate(ctx context.Context, sid string) {
	if err := m.store.Delete(ctx, sid); err != nil {
		obs.Logger.Warn("failed to invalidate session", "sid", sid, "err", err)
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vidhub/backend/internal/models"
)

var (
	// ErrMissingToken indicates no token was presented.
	ErrMissingToken = errors.New("token missing")
	// ErrInvalidToken indicates a token with a bad signature, bad claims or past its expiry.
	ErrInvalidToken = errors.New("token invalid or expired")
	// ErrRefreshTokenReused indicates the presented refresh token is not the user's active one.
	ErrRefreshTokenReused = errors.New("refresh token expired or already used")
	// ErrUnknownUser indicates the token subject no longer maps to a user record.
	ErrUnknownUser = errors.New("token subject not found")
)

// CredentialStore persists the single active refresh token of each user.
type CredentialStore interface {
	// SetRefreshToken overwrites the stored token.
	SetRefreshToken(ctx context.Context, userID, token string) error
	// RefreshToken returns the stored token, or "" when the user is logged out.
	RefreshToken(ctx context.Context, userID string) (string, error)
	// SwapRefreshToken replaces current with next only if current is still stored.
	SwapRefreshToken(ctx context.Context, userID, current, next string) error
	// ClearRefreshToken removes the stored token.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// Settings configures token signing.
type Settings struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
	Issuer        string
}

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the subject the token was issued to.
func (c Claims) UserID() string {
	return c.Subject
}

// Manager issues, verifies, rotates and revokes session tokens.
type Manager struct {
	settings Settings
	store    CredentialStore
	now      func() time.Time
}

// NewManager constructs a Manager backed by the provided credential store.
func NewManager(settings Settings, store CredentialStore) *Manager {
	if store == nil {
		panic("auth: credential store must not be nil")
	}
	if len(settings.AccessSecret) == 0 || len(settings.RefreshSecret) == 0 {
		panic("auth: signing secrets must not be empty")
	}
	if settings.AccessTTL <= 0 {
		settings.AccessTTL = 15 * time.Minute
	}
	if settings.RefreshTTL <= 0 {
		settings.RefreshTTL = 24 * time.Hour
	}
	if settings.Issuer == "" {
		settings.Issuer = "vidhub"
	}
	return &Manager{settings: settings, store: store, now: time.Now}
}

// WithNowFunc allows tests to override the clock used for issuing and verifying tokens.
func (m *Manager) WithNowFunc(now func() time.Time) {
	m.now = now
}

// Issue mints a fresh token pair and records the refresh token as the user's only active one.
func (m *Manager) Issue(ctx context.Context, userID string) (models.SessionTokens, error) {
	tokens, err := m.mint(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}
	if err := m.store.SetRefreshToken(ctx, userID, tokens.RefreshToken); err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return models.SessionTokens{}, err
		}
		return models.SessionTokens{}, fmt.Errorf("store refresh token: %w", err)
	}
	return tokens, nil
}

// VerifyAccess checks an access token's signature and expiry without touching storage.
func (m *Manager) VerifyAccess(token string) (Claims, error) {
	return m.parse(token, m.settings.AccessSecret)
}

// Rotate exchanges the active refresh token for a new pair. A superseded or
// already-rotated token fails with ErrRefreshTokenReused.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	claims, err := m.parse(refreshToken, m.settings.RefreshSecret)
	if err != nil {
		return models.SessionTokens{}, err
	}
	userID := claims.UserID()

	stored, err := m.store.RefreshToken(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return models.SessionTokens{}, ErrUnknownUser
		}
		return models.SessionTokens{}, fmt.Errorf("load refresh token: %w", err)
	}
	if stored == "" || stored != refreshToken {
		return models.SessionTokens{}, ErrRefreshTokenReused
	}

	tokens, err := m.mint(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.store.SwapRefreshToken(ctx, userID, refreshToken, tokens.RefreshToken); err != nil {
		if errors.Is(err, ErrRefreshTokenReused) || errors.Is(err, ErrUnknownUser) {
			return models.SessionTokens{}, err
		}
		return models.SessionTokens{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	return tokens, nil
}

// Revoke logs the user out by clearing the stored refresh token.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUnknownUser
	}
	return m.store.ClearRefreshToken(ctx, userID)
}

func (m *Manager) mint(userID string) (models.SessionTokens, error) {
	if userID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.now().UTC()
	accessExpires := now.Add(m.settings.AccessTTL)
	refreshExpires := now.Add(m.settings.RefreshTTL)

	access, err := m.sign(userID, now, accessExpires, m.settings.AccessSecret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := m.sign(userID, now, refreshExpires, m.settings.RefreshSecret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExpires,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpires,
	}, nil
}

func (m *Manager) sign(userID string, issuedAt, expiresAt time.Time, secret []byte) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    m.settings.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (m *Manager) parse(token string, secret []byte) (Claims, error) {
	if token == "" {
		return Claims{}, ErrMissingToken
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithIssuer(m.settings.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

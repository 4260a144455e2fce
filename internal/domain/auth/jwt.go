package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the identity fields embedded in an access token. They are a
// snapshot of the user record at issue or refresh time and can be stale;
// the is_super_admin bit is for display only, never for authorization.
type Claims struct {
	UserID       uuid.UUID
	Name         string
	Email        string
	IsSuperAdmin bool
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// JWTManager signs and verifies session tokens.
type JWTManager struct {
	secret             []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewJWTManager creates a new JWT manager. The secret is mandatory.
func NewJWTManager(cfg *JWTConfig) (*JWTManager, error) {
	if cfg == nil || cfg.Secret == "" {
		return nil, fmt.Errorf("jwt manager: signing secret is required")
	}
	accessExpiry := cfg.AccessTokenExpiry
	if accessExpiry <= 0 {
		accessExpiry = 15 * time.Minute
	}
	refreshExpiry := cfg.RefreshTokenExpiry
	if refreshExpiry <= 0 {
		refreshExpiry = 7 * 24 * time.Hour
	}
	return &JWTManager{
		secret:             []byte(cfg.Secret),
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
	}, nil
}

// GenerateAccessToken generates a signed access token for the claims.
func (m *JWTManager) GenerateAccessToken(claims Claims) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.accessTokenExpiry)

	mapClaims := jwt.MapClaims{
		"sub":            claims.UserID.String(),
		"name":           claims.Name,
		"email":          claims.Email,
		"is_super_admin": claims.IsSuperAdmin,
		"exp":            expiresAt.Unix(),
		"iat":            time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// ValidateAccessToken verifies a token and extracts its claims.
func (m *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	name, _ := mapClaims["name"].(string)
	email, _ := mapClaims["email"].(string)
	isSuperAdmin, _ := mapClaims["is_super_admin"].(bool)

	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:       userID,
		Name:         name,
		Email:        email,
		IsSuperAdmin: isSuperAdmin,
	}, nil
}

// GenerateRefreshToken generates an opaque refresh token. Only the hash
// is stored.
func (m *JWTManager) GenerateRefreshToken() (rawToken string, tokenHash string, expiresAt time.Time, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate random: %w", err)
	}

	rawToken = hex.EncodeToString(bytes)
	tokenHash = m.HashRefreshToken(rawToken)
	expiresAt = time.Now().Add(m.refreshTokenExpiry)

	return rawToken, tokenHash, expiresAt, nil
}

// HashRefreshToken hashes a refresh token for storage and lookup.
func (m *JWTManager) HashRefreshToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// AccessTokenExpiry returns the access token lifetime.
func (m *JWTManager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	userDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/user"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims carry the tenant alongside the user so every request can be scoped
// without a second lookup. The tenant in the token is only a hint: the
// middleware re-reads the user row and builds the request context from that.
type Claims struct {
	UserID    int64  `json:"user_id"`
	TenantID  string `json:"tenant_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetAuthUser(claims *Claims) (*userDatamodel.User, error)
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetUserByEmail(email string) (*userDatamodel.User, error)
	GetUserByID(tenantID string, userID int64) (*userDatamodel.User, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64, tenantID, email string) (string, error)
	GenerateRefreshToken(userID int64, tenantID, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
	"github.com/pyhumph/jriit-cms-sub001/pkg/apierror"
)

const tokenTypeAccess = "access"

// TokenService validates operator access tokens issued by the CMS login
// service, which shares the HS256 secret.
type TokenService struct {
	jwtSecret []byte
	accessTTL time.Duration
}

func NewTokenService(jwtSecret string, accessTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}

	return &TokenService{jwtSecret: []byte(jwtSecret), accessTTL: accessTTL}
}

func (s *TokenService) ValidateToken(tokenString string, expectedType string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierror.New("UNAUTHORIZED", "invalid token signing method", "", http.StatusUnauthorized)
		}
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, apierror.New("UNAUTHORIZED", "invalid token", "", http.StatusUnauthorized)
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.New("UNAUTHORIZED", "invalid token claims", "", http.StatusUnauthorized)
	}

	typ, _ := claimsMap["typ"].(string)
	if expectedType != "" && typ != expectedType {
		return nil, apierror.New("UNAUTHORIZED", "invalid token type", "", http.StatusUnauthorized)
	}

	claims := &model.AuthClaims{Type: typ}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Username, _ = claimsMap["username"].(string)
	claims.Role, _ = claimsMap["role"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	if claims.UserID == "" {
		return nil, apierror.New("UNAUTHORIZED", "invalid token subject", "", http.StatusUnauthorized)
	}

	return claims, nil
}

// IssueAccessToken mints an access token for an operator. The CLI uses it to
// hand out service tokens.
func (s *TokenService) IssueAccessToken(userID string, username string, role string) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case model.RoleAdmin, model.RoleEditor, model.RoleViewer:
	default:
		return "", apierror.New("BAD_REQUEST", "invalid role", role, http.StatusBadRequest)
	}

	if strings.TrimSpace(userID) == "" {
		return "", apierror.New("BAD_REQUEST", "user id is required", "", http.StatusBadRequest)
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"role":     role,
		"typ":      tokenTypeAccess,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(s.accessTTL).Unix(),
	})

	return token.SignedString(s.jwtSecret)
}

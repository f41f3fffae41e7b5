package jwt

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeStream = "sse"

	// StreamTokenTTL bounds how long a live-location stream token may be used to connect.
	StreamTokenTTL = 5 * time.Minute
)

type Service interface {
	GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error)
	GenerateStreamToken(actor user.Actor) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (user.Actor, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService builds an HS256 token service. accessTokenExpirationTime is a
// Go duration string such as "15m".
func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	exp, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration %q: %w", accessTokenExpirationTime, err)
	}
	return &JWTService{
		accessTokenExpirationTime: exp,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}, nil
}

func (j *JWTService) GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpirationTime).Unix()
	claims := actorClaims(actor)
	claims["type"] = TokenTypeAccess
	claims["exp"] = expiresAt

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// GenerateStreamToken issues a short-lived token for the SSE endpoint, where
// browsers cannot send an Authorization header.
func (j *JWTService) GenerateStreamToken(actor user.Actor) (token string, expiresIn int, err error) {
	claims := actorClaims(actor)
	claims["type"] = TokenTypeStream
	claims["exp"] = j.now().Add(StreamTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(StreamTokenTTL.Seconds()), nil
}

// ValidateStreamToken validates an SSE token and returns the actor it was issued to.
func (j *JWTService) ValidateStreamToken(tokenString string) (user.Actor, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return user.Actor{}, err
	}

	claims := token.PrivateClaims()
	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeStream {
		return user.Actor{}, jwt.ErrInvalidJWT()
	}

	actor := ActorFromClaims(claims)
	if !actor.Role.IsValid() {
		return user.Actor{}, jwt.ErrInvalidJWT()
	}
	return actor, nil
}

// ActorFromClaims reads the identity claims. Missing claims stay empty.
func ActorFromClaims(claims map[string]interface{}) user.Actor {
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	return user.Actor{
		UserID:    str("user_id"),
		StaffID:   str("staff_id"),
		CompanyID: str("company_id"),
		Role:      user.Role(str("role")),
	}
}

func actorClaims(actor user.Actor) map[string]interface{} {
	return map[string]interface{}{
		"user_id":    actor.UserID,
		"staff_id":   returnValueOrNil(actor.StaffID),
		"company_id": returnValueOrNil(actor.CompanyID),
		"role":       string(actor.Role),
	}
}

func returnValueOrNil(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

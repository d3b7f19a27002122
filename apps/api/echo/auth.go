package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core"
)

// tokenContextKey is where the JWT middleware stores the parsed token.
var tokenContextKey = "sessionToken"

// Kind tags the principal a session belongs to. The set is closed: a token
// minted for one kind never opens another kind's session.
type Kind string

const (
	KindAdmin   Kind = "admin"
	KindTutor   Kind = "tutor"
	KindStudent Kind = "user"
)

func (k Kind) String() string { return string(k) }

// ResponseKey is the payload field an entity of this kind is returned under.
func (k Kind) ResponseKey() string {
	switch k {
	case KindAdmin:
		return "currentAdmin"
	case KindTutor:
		return "currentTutor"
	default:
		return "currentUser"
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Kind  Kind   `json:"kind,omitempty"`
	Email string `json:"email,omitempty"`
}

// NewSessionClaims mints the claims for a fresh session of the given kind.
func NewSessionClaims(conf *core.Config, kind Kind, id, email string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   id,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Kind:  kind,
		Email: email,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

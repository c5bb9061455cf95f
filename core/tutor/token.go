package tutor

import (
	"crypto/sha256"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const tokenIssuer = "ajolotes.perfil_admin"

var (
	salt    = []byte("ajolotes.core.tutor.token")
	nowFunc = time.Now // mockable

	// errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

func signingKey(secret string) []byte {
	key := sha256.Sum256(append(append([]byte{}, salt...), secret...))
	return key[:]
}

// makeToken signs a short-lived token naming the Tutor, with a random nonce so two tokens never collide.
func makeToken(t Tutor, secret string, ttl time.Duration) (string, error) {
	now := nowFunc()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(t.ID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey(secret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// verifyToken checks the signature and expiry of token and returns the Tutor ID it names.
func verifyToken(token, secret string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}

	claims := new(jwt.RegisteredClaims)
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (interface{}, error) { return signingKey(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(nowFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

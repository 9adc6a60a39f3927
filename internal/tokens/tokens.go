package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/campusflow/internal/domain"
)

const DefaultTTL = 30 * time.Minute

type AccessClaims struct {
	jwt.RegisteredClaims
}

// Keys holds the server-side signing secret and the HMAC method used with it.
type Keys struct {
	Secret []byte
	Method *jwt.SigningMethodHMAC
}

func NewKeys(secret []byte, alg string) (Keys, error) {
	if len(secret) == 0 {
		return Keys{}, errors.New("jwt secret is empty")
	}
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	m, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return Keys{}, fmt.Errorf("unsupported signing method %q", alg)
	}
	return Keys{Secret: secret, Method: m}, nil
}

type Issuer struct {
	Keys Keys
	TTL  time.Duration
	Now  func() time.Time
}

func NewIssuer(keys Keys, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{Keys: keys, TTL: ttl, Now: time.Now}
}

// Issue signs a token for subject with the configured default TTL.
func (i *Issuer) Issue(subject string) (string, time.Time, error) {
	return i.IssueWithTTL(subject, i.TTL)
}

// IssueWithTTL signs a token that expires at now+ttl. A zero ttl yields a token
// that is already expired.
func (i *Issuer) IssueWithTTL(subject string, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("empty token subject")
	}
	now := i.Now()
	exp := now.Add(ttl)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(i.Keys.Method, claims).SignedString(i.Keys.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

type Verifier struct {
	Keys Keys
	Now  func() time.Time
}

func NewVerifier(keys Keys) *Verifier {
	return &Verifier{Keys: keys, Now: time.Now}
}

// Verify checks signature, algorithm and expiry and returns the subject. Every
// failure wraps domain.ErrInvalidToken.
func (v *Verifier) Verify(tokenStr string) (string, error) {
	claims, err := v.Claims(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (v *Verifier) Claims(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (any, error) { return v.Keys.Secret, nil },
		jwt.WithValidMethods([]string{v.Keys.Method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}
	// exp equal to now counts as expired.
	if !v.Now().Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, jwt.ErrTokenExpired)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}
	return &claims, nil
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload of an access token.
type Claims struct {
	UserID    int
	Username  string
	Role      string
	SessionID string
	ExpiresAt time.Time
}

// Issuer signs and validates HS256 access tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token bound to the given session.
func (i *Issuer) Issue(s Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":      s.UserID,
		"username": s.Username,
		"role":     s.Role,
		"sid":      s.ID,
		"exp":      s.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse validates tokenStr. When the signature is good but the token has expired the
// returned claims are still filled in alongside the error, so the caller can drop the
// session it pointed at.
func (i *Issuer) Parse(tokenStr string) (Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if token == nil {
		return Claims{}, err
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("unexpected claims type")
	}
	claims, cerr := claimsFrom(mc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && cerr == nil {
			return claims, err
		}
		return Claims{}, err
	}
	return claims, cerr
}

func claimsFrom(mc jwt.MapClaims) (Claims, error) {
	var c Claims
	sub, ok := mc["sub"].(float64)
	if !ok {
		return Claims{}, errors.New("missing sub claim")
	}
	c.UserID = int(sub)
	c.Username, _ = mc["username"].(string)
	c.Role, _ = mc["role"].(string)
	c.SessionID, ok = mc["sid"].(string)
	if !ok || c.SessionID == "" {
		return Claims{}, errors.New("missing sid claim")
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, fmt.Errorf("invalid exp claim: %v", err)
	}
	c.ExpiresAt = exp.Time
	return c, nil
}

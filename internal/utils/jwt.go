package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token type claim values.  Every signed token carries a "type" claim so a
// refresh token can never be presented where an access token is expected and
// vice versa.
const (
    TokenTypeAccess  = "access"
    TokenTypeRefresh = "refresh"
)

// Sentinel errors returned by VerifyToken.  Callers use the distinction to
// pick a response: an expired access token should prompt a refresh, anything
// else forces re-login.
var (
    ErrTokenExpired = errors.New("token expired")
    ErrTokenInvalid = errors.New("invalid token")
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived and carried in the Authorization header when
// calling protected endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// RefreshToken is a longer-lived signed token used solely to mint new access
// tokens.  It is stateless: nothing about it is persisted server-side, so a
// compromised refresh token can only be killed by rotating the signing secret.
type RefreshToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // UTC expiration time
}

// Claims is the decoded identity carried by a verified token.
type Claims struct {
    UserID uint64
    Email  string
    Role   string
    Type   string
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The claims embed
// the user id, email and role so protected handlers never re-query identity,
// plus type=access, exp and iat.
func NewAccessToken(secret string, userID uint64, email, role string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "user_id": userID,
        "email":   email,
        "role":    role,
        "type":    TokenTypeAccess,
        "exp":     exp.Unix(),
        "iat":     time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 JWT carrying only the user id and
// type=refresh.  Role is deliberately omitted: the refresh endpoint re-fetches
// the current role so a demotion takes effect on the next refresh.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (RefreshToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
    claims := jwt.MapClaims{
        "user_id": userID,
        "type":    TokenTypeRefresh,
        "exp":     exp.Unix(),
        "iat":     time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{Token: signed, Exp: exp}, nil
}

// VerifyToken parses and validates a signed token and returns its claims.
// Expired tokens map to ErrTokenExpired; tampered, malformed or wrongly
// signed tokens map to ErrTokenInvalid.
func VerifyToken(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenInvalid
        }
        return []byte(secret), nil
    })
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return Claims{}, ErrTokenExpired
        }
        return Claims{}, ErrTokenInvalid
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok || !tok.Valid {
        return Claims{}, ErrTokenInvalid
    }

    var c Claims
    switch id := mc["user_id"].(type) {
    case float64:
        c.UserID = uint64(id)
    default:
        return Claims{}, ErrTokenInvalid
    }
    if v, ok := mc["email"].(string); ok {
        c.Email = v
    }
    if v, ok := mc["role"].(string); ok {
        c.Role = v
    }
    if v, ok := mc["type"].(string); ok {
        c.Type = v
    }
    if c.Type == "" {
        return Claims{}, ErrTokenInvalid
    }
    return c, nil
}

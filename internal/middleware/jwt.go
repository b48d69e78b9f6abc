package middleware // middleware contains reusable HTTP middleware functions

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware
)

// Context keys set by JWTAuth for downstream handlers.
const (
    CtxUserID = "user_id"
    CtxEmail  = "email"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject and email claims into the request
// context. The provided secret must match the one used when issuing
// tokens. Handlers behind this middleware read the caller's identity via
// c.Get(middleware.CtxUserID).
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Pin the signing method to HMAC; tokens signed with any other
            // algorithm are rejected before the signature is checked.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            uid, ok := subjectID(claims)
            if !ok || uid == 0 {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            c.Set(CtxUserID, uid)
            if email, ok := claims["email"].(string); ok {
                c.Set(CtxEmail, email)
            }
            return next(c)
        }
    }
}

// subjectID extracts the numeric user ID from the sub claim. JWT numbers
// decode as float64; string subjects are parsed for interoperability with
// tokens minted by other issuers.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
    switch sub := claims["sub"].(type) {
    case float64:
        return uint64(sub), true
    case string:
        if parsed, err := strconv.ParseUint(sub, 10, 64); err == nil {
            return parsed, true
        }
    }
    return 0, false
}

// UserID reads the authenticated user's ID set by JWTAuth. Returns zero
// when the request is unauthenticated.
func UserID(c echo.Context) uint64 {
    if v, ok := c.Get(CtxUserID).(uint64); ok {
        return v
    }
    return 0
}

package middleware

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
)

// Authorizer answers salon-scoped permission questions. Satisfied by
// auth.Resolver; declared here so the middleware does not import the auth
// package.
type Authorizer interface {
    Authorize(ctx context.Context, userID, salonID uint64, permission string) (bool, error)
}

// RequirePermission returns a middleware that enforces a salon-scoped
// permission on routes carrying a :salon_id path parameter. It assumes
// JWTAuth ran earlier and resolves the decision against the store on every
// request, so a deactivated role grant denies immediately regardless of
// how recently the access token was minted.
func RequirePermission(az Authorizer, permission string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            uid := UserID(c)
            if uid == 0 {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            salonID, err := strconv.ParseUint(c.Param("salon_id"), 10, 64)
            if err != nil || salonID == 0 {
                return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid salon id"})
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()

            allowed, err := az.Authorize(ctx, uid, salonID, permission)
            if err != nil {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authorization check failed"})
            }
            if !allowed {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}

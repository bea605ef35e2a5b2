package middleware

import (
	"context"
	"log"
	"net/http"

	"mindhaven/internal/common"
	"mindhaven/internal/services"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates bearer tokens and stores the authenticated user
// ID in the request context. With only a secret it verifies the HS256
// tokens minted by the auth service; when a JWKS URL is configured the
// keys of the external identity provider are used instead.
//
// Locally minted tokens carry a session ID (jti) that must still be in the
// allowlist, so a logout invalidates the token before it expires. Tokens
// from an external provider have no jti and skip the allowlist.
func JWTMiddleware(jwtSecret, jwksURL string, sessions services.SessionStore) echo.MiddlewareFunc {
	config := echojwt.Config{
		SigningKey: []byte(jwtSecret),
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}

	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Printf("Failed to load JWKS from %s, falling back to local secret: %v", jwksURL, err)
		} else {
			config.SigningKey = nil
			config.KeyFunc = jwks.Keyfunc
		}
	}

	verify := echojwt.WithConfig(config)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token not found")
			}

			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing user_id in token")
			}

			userID, err := uuid.Parse(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid user_id format")
			}

			ctx := c.Request().Context()
			if tokenID := tokenIDFromClaims(token.Claims); tokenID != "" {
				owner, err := sessions.GetSession(ctx, tokenID)
				if err != nil {
					// The signature already checked out; an allowlist
					// outage must not lock every user out.
					log.Printf("Session lookup failed for token %s: %v", tokenID, err)
				} else if owner != sub {
					return echo.NewHTTPError(http.StatusUnauthorized, "Session revoked")
				}
				ctx = context.WithValue(ctx, common.TokenIDKey, tokenID)
			}

			ctx = context.WithValue(ctx, common.UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		})
	}
}

func tokenIDFromClaims(claims jwt.Claims) string {
	mapClaims, ok := claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	tokenID, _ := mapClaims["jti"].(string)
	return tokenID
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"neontix/internal/shared/config"
	"neontix/internal/shared/utils/response"
	"neontix/pkg/logger"
)

const RoleAdmin = "admin"

var (
	errMissingHeader = errors.New("authorization header is required")
	errHeaderFormat  = errors.New("authorization header format must be Bearer {token}")
	errInvalidToken  = errors.New("invalid or expired token")
	errWrongIssuer   = errors.New("token issuer is not trusted")
)

// Identity is what the identity provider vouches for in an access token
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// JWTAuthWithConfig verifies bearer tokens signed by the external identity provider
func JWTAuthWithConfig(cfg config.JWTConfig) gin.HandlerFunc {
	log := logger.GetDefault()
	return func(c *gin.Context) {
		id, err := authenticate(c.GetHeader("Authorization"), cfg)
		if err != nil {
			log.LogAuthFailure(c.Request.Context(), err.Error(), c.ClientIP())
			response.AbortJSON(c, http.StatusUnauthorized, err.Error(), nil)
			return
		}

		setIdentity(c, id)
		c.Next()
	}
}

// OptionalAuthWithConfig sets the identity when a valid token is present and never rejects
func OptionalAuthWithConfig(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := authenticate(c.GetHeader("Authorization"), cfg); err == nil {
			setIdentity(c, id)
		}
		c.Next()
	}
}

// RequireRoles checks the authenticated user has one of the given roles
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("user_role")
		if userRole == "" {
			response.AbortJSON(c, http.StatusUnauthorized, "user role not found in context", nil)
			return
		}

		for _, role := range requiredRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		response.AbortJSON(c, http.StatusForbidden, "Insufficient permissions", nil)
	}
}

func RequireRole(requiredRole string) gin.HandlerFunc {
	return RequireRoles(requiredRole)
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRole(RoleAdmin)
}

// AdminGuard is the handler chain every admin route sits behind
func AdminGuard(cfg config.JWTConfig) []gin.HandlerFunc {
	return []gin.HandlerFunc{JWTAuthWithConfig(cfg), RequireAdmin()}
}

func setIdentity(c *gin.Context, id Identity) {
	c.Set("user_id", id.UserID)
	c.Set("user_email", id.Email)
	c.Set("user_role", id.Role)
}

func authenticate(header string, cfg config.JWTConfig) (Identity, error) {
	if header == "" {
		return Identity{}, errMissingHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return Identity{}, errHeaderFormat
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errInvalidToken
	}
	if cfg.Issuer != "" && !claims.VerifyIssuer(cfg.Issuer, true) {
		return Identity{}, errWrongIssuer
	}

	return identityFromClaims(claims), nil
}

// identityFromClaims reads the subject from "sub" (or "user_id") and the role
// from app_metadata.role before the top-level "role" claim.
func identityFromClaims(claims jwt.MapClaims) Identity {
	id := Identity{
		UserID: stringClaim(claims, "sub"),
		Email:  stringClaim(claims, "email"),
		Role:   stringClaim(claims, "role"),
	}
	if id.UserID == "" {
		id.UserID = stringClaim(claims, "user_id")
	}
	if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if role, ok := meta["role"].(string); ok && role != "" {
			id.Role = role
		}
	}
	return id
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

// Claim names issued by the federation backend. ASP.NET tokens carry the role and the user id
// under schema URIs; other issuers use the short names.
const (
	jwtClaimUserID    = "user_id"
	jwtClaimSubject   = "sub"
	jwtClaimNameID    = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	jwtClaimRole      = "role"
	jwtClaimSchemaRol = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
)

const RoleAdmin = "Admin"

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, errors.New("user claims not found in context or invalid type")
	}
	return claims, nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}

	for _, name := range []string{jwtClaimUserID, jwtClaimNameID, jwtClaimSubject} {
		raw, ok := claims[name]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			if v != float64(int(v)) || v <= 0 {
				return 0, fmt.Errorf("invalid user ID value in '%s' claim: %v", name, v)
			}
			return int(v), nil
		case string:
			id, err := strconv.Atoi(v)
			if err != nil || id <= 0 {
				return 0, fmt.Errorf("invalid user ID value in '%s' claim: %q", name, v)
			}
			return id, nil
		default:
			return 0, fmt.Errorf("invalid type for '%s' claim: expected number or string, got %T", name, raw)
		}
	}
	return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
}

// GetUserRoleFromContext returns the first role claim. Tokens with several roles carry them as
// an array; the first string wins.
func GetUserRoleFromContext(ctx context.Context) (string, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	for _, name := range []string{jwtClaimRole, jwtClaimSchemaRol} {
		switch v := claims[name].(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					return s, nil
				}
			}
		}
	}
	return "", fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
}

// WithClaims stores claims the way Authenticate does. Handler tests use it to skip token parsing.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

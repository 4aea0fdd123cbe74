package middleware

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "tably/pkg/domain"
)

// JWTValidator validates HS256 bearer tokens carrying tenant/staff claims.
// Token issuance lives in the session subsystem; this side only verifies.
type JWTValidator struct {
	signingKey []byte
}

func NewJWTValidator(signingKey string) *JWTValidator {
	return &JWTValidator{signingKey: []byte(signingKey)}
}

type tokenClaims struct {
	TenantID string `json:"tenant_id"`
	StaffID  string `json:"staff_id,omitempty"`
	jwt.RegisteredClaims
}

// ValidateToken parses and verifies a bearer token.
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return &Claims{TenantID: claims.TenantID, StaffID: claims.StaffID}, nil
}

// IssueToken signs a short-lived token for the given identity. Used by tests
// and local tooling; production tokens come from the auth subsystem.
func (v *JWTValidator) IssueToken(tenantID id.TenantID, staffID id.StaffID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		TenantID: tenantID.String(),
		StaffID:  staffID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.signingKey)
}

func parseTenant(raw string) (id.TenantID, error) { return id.ParseTenantID(raw) }
func parseStaff(raw string) (id.StaffID, error)   { return id.ParseStaffID(raw) }

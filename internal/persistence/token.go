package persistence

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blockengine/internal/auth"
)

// SignExport attests a StateRecordV1's provenance with a signed JWT,
// reusing internal/auth's signing key so exported records can be
// verified against the same secret that mints operator bearer tokens.
func SignExport(jwtManager *auth.JWTManager, r StateRecordV1) (string, error) {
	claims := jwt.MapClaims{
		"block_index": r.BlockIndex,
		"version":     r.Version,
		"exported_at": time.Now().Unix(),
	}
	token, err := jwtManager.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign export token: %w", err)
	}
	return token, nil
}

package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT custom claims for service tokens
type Claims struct {
	ClientName string `json:"client_name"`
	jwt.RegisteredClaims
}

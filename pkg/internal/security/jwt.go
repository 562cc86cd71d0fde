package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

type AccountClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func IssueToken(accountId uint, username, role string) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(viper.GetInt64("security.jwt_expiration_ms")) * time.Millisecond)
	claims := AccountClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", accountId),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "pulso",
		},
	}

	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tk.SignedString([]byte(viper.GetString("security.jwt_secret")))
	return signed, expiresAt, err
}

func ParseToken(token string) (*AccountClaims, error) {
	var claims AccountClaims
	out, err := jwt.ParseWithClaims(token, &claims, func(tk *jwt.Token) (any, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Header["alg"])
		}
		return []byte(viper.GetString("security.jwt_secret")), nil
	})
	if err != nil {
		return nil, err
	}
	if !out.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &claims, nil
}

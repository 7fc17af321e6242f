package ledger

import (
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hanzi-quest/backend/internal/models"
)

// SigningKey loads the payout-certificate signing key from the environment.
func SigningKey() []byte {
	secret := os.Getenv("LEDGER_SIGNING_KEY")
	if secret == "" {
		secret = "dev-ledger-signing-key-change-in-production"
	}
	return []byte(secret)
}

// signCertificate issues a compact signed token for a settlement summary so
// a guardian-facing surface can verify a payout happened without trusting
// the presentation layer.
func signCertificate(key []byte, cert *models.PayoutCertificate) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"week_id":         cert.WeekID,
		"start_date":      cert.StartDate.Format("2006-01-02"),
		"end_date":        cert.EndDate.Format("2006-01-02"),
		"total_earned":    cert.TotalEarned,
		"completed_tasks": cert.CompletedTasks,
		"iat":             cert.GeneratedAt.Unix(),
	})

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign payout certificate: %w", err)
	}
	return signed, nil
}

// VerifyCertificate parses and validates a certificate token, returning its
// claims. Used by external verifiers (and tests).
func VerifyCertificate(key []byte, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuedAt())
	if err != nil {
		return nil, fmt.Errorf("verify payout certificate: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid payout certificate")
	}
	return claims, nil
}

package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/telelink-next/internal/constants"
)

// generateShortCode returns a random code from the unambiguous alphabet.
func generateShortCode() (string, error) {
	var builder strings.Builder
	builder.Grow(constants.CodeLength)
	max := big.NewInt(int64(len(constants.CodeAlphabet)))
	for i := 0; i < constants.CodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(constants.CodeAlphabet[n.Int64()])
	}
	return builder.String(), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// buildWalletReference builds an idempotency reference for wallet history rows.
func buildWalletReference(kind string, creatorID uint64, entityID uint) string {
	if entityID != 0 {
		return fmt.Sprintf("%s:%d:%d", kind, creatorID, entityID)
	}
	return fmt.Sprintf("%s:%d:%d", kind, creatorID, time.Now().UnixNano())
}

package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

func computeChecksum(parts ...string) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(strings.TrimSpace(strings.ToLower(part))))
		hasher.Write([]byte("|"))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func maskEmail(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" {
		return "***"
	}
	local := parts[0]
	domain := parts[1]
	if len(local) <= 2 {
		local = local[:1] + "***"
	} else {
		local = local[:1] + "***" + local[len(local)-1:]
	}
	return local + "@" + domain
}

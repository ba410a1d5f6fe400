package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash of the supplied credential. The cost
// comes from configuration so tests can run at bcrypt.MinCost while
// production uses a slower work factor.
func HashPassword(plain string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// Callers only see a boolean; the reason for a mismatch is never surfaced.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

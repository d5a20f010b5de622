package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash of the plain password at the given
// cost.  The cost comes from BCRYPT_COST in the environment; values
// outside bcrypt's supported range fall back to the library default
// instead of failing every registration.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// Callers treat a mismatch exactly like an unknown user so login
// responses leak nothing about which handles exist.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

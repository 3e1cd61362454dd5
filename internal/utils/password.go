package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the bcrypt digest stored in users.password_hash.
// The cost comes from BCRYPT_COST configuration.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt digest.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

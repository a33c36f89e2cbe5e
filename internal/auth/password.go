package auth

import "golang.org/x/crypto/bcrypt"

// PasswordCost is bcrypt cost ≥ 12 per spec.md §4.1.
const PasswordCost = 12

func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordCost)
	if err != nil {
		return "", errTokenSignFailed(err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches hash, never leaking
// timing information beyond what bcrypt.CompareHashAndPassword already
// guarantees.
func VerifyPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

package auth

import "golang.org/x/crypto/bcrypt"

var bcryptCost = bcrypt.DefaultCost

func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// UseMinCost makes hashing cheap. Tests only.
func UseMinCost() { bcryptCost = bcrypt.MinCost }

package domain

// UserCredential is a registered account. PasswordHash is a bcrypt hash;
// the raw password never leaves the account use case.
type UserCredential struct {
	Username     string
	PasswordHash string
}

package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash, or the sentinel value for accounts that only
// authenticate via Google and have no usable local password.
type User struct {
	ID        string
	Email     string
	Password  string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

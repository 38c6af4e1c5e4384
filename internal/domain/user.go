package domain

import (
	"strings"
	"time"
)

// Profile is a row of the profiles table.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	IsAdmin   bool      `db:"is_admin" json:"is_admin"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CurrentUser is the identity the client derives for the signed-in account.
type CurrentUser struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Initials  string `json:"initials"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
}

// DeriveUser builds the display identity from a profile row.
func DeriveUser(p Profile) CurrentUser {
	first := p.FirstName
	if first == "" {
		first = "User"
	}
	return CurrentUser{
		ID:        p.ID,
		FirstName: first,
		LastName:  p.LastName,
		Initials:  initials(p.FirstName, p.LastName),
		Email:     p.Email,
		IsAdmin:   p.IsAdmin,
	}
}

// FallbackUser derives an identity from session metadata when no profile row is readable.
func FallbackUser(u AuthUser) CurrentUser {
	cu := DeriveUser(Profile{
		ID:        u.ID,
		FirstName: u.Metadata[MetaFirstName],
		LastName:  u.Metadata[MetaLastName],
	})
	cu.Email = u.Email
	return cu
}

// DisplayName is the upper-cased full name shown in the header.
func (u CurrentUser) DisplayName() string {
	return strings.ToUpper(u.FirstName + " " + u.LastName)
}

// Guest is shown while nobody is signed in.
func Guest() (name, initials string) {
	return "GUEST", "G"
}

func initials(first, last string) string {
	a := "U"
	if r := []rune(first); len(r) > 0 {
		a = string(r[0])
	}
	b := "U"
	if r := []rune(last); len(r) > 0 {
		b = string(r[0])
	}
	return strings.ToUpper(a + b)
}

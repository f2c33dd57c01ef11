package userservice

import (
	"database/sql"
)

// OwnerID is the id of the super-admin: the first user ever registered.
const OwnerID = 1

// Role is the effective privilege level of a registered user.
type Role int

const (
	RoleMember Role = iota
	RoleAdmin
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleAdmin:
		return "admin"
	default:
		return "member"
	}
}

var (
	AnonymousUser = User{}
)

type UserService struct {
	m          *DBModel
	iterations int
	// dummyHash is verified against when the email has no account so both
	// login failures pay the same PBKDF2 cost.
	dummyHash string
	verify    func(raw, encoded string) bool
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password Password `json:"-"`
	IsAdmin  bool     `json:"is_admin"`
}

type Password struct {
	Plain string `json:"-"`
	hash  string `json:"-"`
}

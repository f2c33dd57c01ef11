package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DijitalRED/red-blog/internal/common"
)

var (
	ErrNoAccount     = errors.New("no account with this email")
	ErrWrongPassword = errors.New("wrong password")
)

// NewUserService returns a service hashing new passwords with the given
// PBKDF2 iteration count.
func NewUserService(db *sql.DB, iterations int) *UserService {
	if iterations < 1 {
		iterations = DefaultIterations
	}

	return &UserService{
		m:          newUserModel(db),
		iterations: iterations,
		dummyHash:  placeholderHash(iterations),
		verify:     VerifyPassword,
	}
}

// CreateUser registers a new member account. ErrDuplicateEmail is returned
// when the email is taken, including when a concurrent registration wins
// the race on the unique constraint.
func (s *UserService) CreateUser(ctx context.Context, name, email, password string) (*User, error) {
	v := common.NewValidator()
	validateName(v, name)
	validateNewEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	_, err := s.m.getUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	u := User{
		Name:     name,
		Email:    email,
		Password: Password{Plain: password},
		IsAdmin:  false,
	}

	err = u.Password.set(u.Password.Plain, s.iterations)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// LoginUser checks the credentials and returns the matching user.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*User, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			s.verify(password, s.dummyHash)
			return nil, ErrNoAccount
		default:
			return nil, err
		}
	}

	if !s.verify(password, user.Password.hash) {
		return nil, ErrWrongPassword
	}

	return user, nil
}

// GetUserByID returns ErrNotFound when no such user exists.
func (s *UserService) GetUserByID(ctx context.Context, id int) (*User, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getUserByID(ctx, id)
}

// GetUsers returns every user ordered by id.
func (s *UserService) GetUsers(ctx context.Context) ([]User, error) {
	return s.m.getUsers(ctx)
}

// GetAdminCandidates returns the users whose admin flag may be changed:
// everyone but the owner.
func (s *UserService) GetAdminCandidates(ctx context.Context) ([]User, error) {
	users, err := s.m.getUsers(ctx)
	if err != nil {
		return nil, err
	}

	candidates := []User{}
	for _, u := range users {
		if u.ID != OwnerID {
			candidates = append(candidates, u)
		}
	}

	return candidates, nil
}

// SetAdmin grants or revokes the admin flag of the user with the given id.
// The owner is not a valid target.
func (s *UserService) SetAdmin(ctx context.Context, id int, isAdmin bool) error {
	v := common.NewValidator()
	v.Check(id > 0 && id != OwnerID, "the_user", "not a valid choice")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.updateAdmin(ctx, id, isAdmin)
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}

// Role derives the effective role. The owner keeps RoleOwner whatever its
// is_admin column says.
func (u *User) Role() Role {
	switch {
	case u.ID == OwnerID:
		return RoleOwner
	case u.IsAdmin:
		return RoleAdmin
	default:
		return RoleMember
	}
}

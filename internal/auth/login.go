package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/smartcampus/smartcampus/internal/campus"
	"github.com/smartcampus/smartcampus/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserFinder interface {
	FindUser(ctx context.Context, username string) (store.User, error)
}

// Profile is what a successful login reveals to the client. UserID is set
// only for students and carries the linked student id.
type Profile struct {
	Role       campus.Role
	Username   string
	UserID     *string
	Department *string
	DisplayID  string
}

type Authenticator struct {
	users UserFinder
}

func NewAuthenticator(users UserFinder) *Authenticator {
	return &Authenticator{users: users}
}

func (a *Authenticator) Login(ctx context.Context, username, password string) (Profile, error) {
	if username == "" || password == "" {
		return Profile{}, ErrInvalidCredentials
	}
	user, err := a.users.FindUser(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, ErrInvalidCredentials
		}
		return Profile{}, fmt.Errorf("lookup user: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		return Profile{}, ErrInvalidCredentials
	}
	role, err := campus.ParseRole(user.Role)
	if err != nil {
		return Profile{}, fmt.Errorf("user %q: %w", user.Username, err)
	}

	profile := Profile{
		Role:       role,
		Username:   user.Username,
		Department: user.Department,
		DisplayID:  user.Username,
	}
	if role == campus.RoleStudent && user.LinkedStudentID != nil {
		id := *user.LinkedStudentID
		profile.UserID = &id
		profile.DisplayID = id
	}
	return profile, nil
}

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/smartcampus/smartcampus/internal/campus"
	"github.com/smartcampus/smartcampus/internal/store"
)

type fakeUsers map[string]store.User

func (f fakeUsers) FindUser(_ context.Context, username string) (store.User, error) {
	if username == "broken" {
		return store.User{}, errors.New("db down")
	}
	user, ok := f[username]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return user, nil
}

func strPtr(v string) *string { return &v }

func testUsers() fakeUsers {
	return fakeUsers{
		"asha":  {UserID: 1, Username: "asha", Password: "pw1", Role: "student", LinkedStudentID: strPtr("S42")},
		"mehta": {UserID: 2, Username: "mehta", Password: "pw2", Role: "faculty", Department: strPtr("CSE")},
		"root":  {UserID: 3, Username: "root", Password: "pw3", Role: "admin"},
		"odd":   {UserID: 4, Username: "odd", Password: "pw4", Role: "janitor"},
	}
}

func TestLoginStudentUsesLinkedID(t *testing.T) {
	profile, err := NewAuthenticator(testUsers()).Login(context.Background(), "asha", "pw1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if profile.Role != campus.RoleStudent {
		t.Fatalf("Role = %q", profile.Role)
	}
	if profile.UserID == nil || *profile.UserID != "S42" || profile.DisplayID != "S42" {
		t.Fatalf("profile = %#v", profile)
	}
}

func TestLoginFacultyUsesUsernameAsDisplayID(t *testing.T) {
	profile, err := NewAuthenticator(testUsers()).Login(context.Background(), "mehta", "pw2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if profile.UserID != nil {
		t.Fatalf("UserID = %q, want nil", *profile.UserID)
	}
	if profile.DisplayID != "mehta" || profile.Department == nil || *profile.Department != "CSE" {
		t.Fatalf("profile = %#v", profile)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	authn := NewAuthenticator(testUsers())
	cases := [][2]string{{"asha", "wrong"}, {"ghost", "pw"}, {"", ""}}
	for _, c := range cases {
		if _, err := authn.Login(context.Background(), c[0], c[1]); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Login(%q) error = %v, want ErrInvalidCredentials", c[0], err)
		}
	}
}

func TestLoginSurfacesStoreAndRoleErrors(t *testing.T) {
	authn := NewAuthenticator(testUsers())
	if _, err := authn.Login(context.Background(), "broken", "pw"); err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, err := authn.Login(context.Background(), "odd", "pw4"); err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected role error, got %v", err)
	}
}

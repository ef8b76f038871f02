package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"pharmadesk/m/domain"
)

// ErrInvalidCredentials keeps login failures indistinguishable between a
// missing account and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CreateUser registers an API user with a bcrypt-hashed password. Role must
// be owner or employee.
func (s *Store) CreateUser(ctx context.Context, username, email, password, role string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case username == "" || email == "" || password == "":
		return domain.User{}, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	case role != "owner" && role != "employee":
		return domain.User{}, fmt.Errorf("%w: role must be owner or employee", domain.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	createdAt := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		username, email, hashed, role, createdAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: email already registered", domain.ErrValidation)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, fmt.Errorf("user id: %w", err)
	}
	return domain.User{ID: id, Username: username, Email: email, Role: role, CreatedAt: createdAt}, nil
}

// Authenticate verifies the email/password pair and returns the user with
// the password cleared.
func (s *Store) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user,
		`SELECT id, username, email, password, role, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	user.Password = ""
	return user, nil
}

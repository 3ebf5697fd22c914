package store

import "context"

// User is an account authenticated through Google sign-in.
type User struct {
	ID           int32
	Email        string
	Name         string
	Picture      string
	GoogleID     string
	RefreshToken string
	CreatedTs    int64
}

type FindUser struct {
	ID       *int32
	Email    *string
	GoogleID *string
}

type UpdateUser struct {
	ID           int32
	Name         *string
	Picture      *string
	RefreshToken *string
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	return s.driver.UpdateUser(ctx, update)
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser returns the single matching user, or nil when none matches.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

package domain

import "time"

// User is an authenticatable principal. Roles are loaded alongside the user
// (with their permissions) because scope computation needs the full graph.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt encoded
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role groups permissions under a name. Roles are shared: many users may
// reference one role, and a permission may belong to many roles.
type Role struct {
	Name        string // primary key
	Description string
	Permissions []Permission
}

// Permission is a leaf grant, identified by name.
type Permission struct {
	Name        string // primary key
	Description string
}

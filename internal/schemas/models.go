// Package schemas defines the data structures shared between handlers,
// stores and middleware: persistent models, request payloads, the uniform
// response envelope and the error taxonomy.
package schemas

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser      Role = "user"
	RolePublisher Role = "publisher"
	RoleAdmin     Role = "admin"
)

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePublisher, RoleAdmin:
		return true
	}
	return false
}

// Account represents a registered user. The password hash and the reset
// token fields never leave the server; only their columns know them.
type Account struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Role                Role       `json:"role"`
	Password            string     `json:"-"` // bcrypt hash, never serialized
	ResetPasswordToken  *string    `json:"-"` // sha256 hex of the reset secret
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// Document is a schemaless resource record as stored in a JSONB column.
// Bootcamps, courses and reviews are all documents; their shape is governed
// by the request DTOs that create them plus the fields the server manages
// (id, createdAt, ownership references, derived aggregates).
type Document map[string]any

// ID returns the document id field as a string, or "" when absent.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

package model

import "time"

// Role represents a row in the `roles` table.  Users reference it through
// user_features.role_id; a role cannot be deleted while referenced.
type Role struct {
    ID          uint8     `json:"id"`          // roles.id
    Name        string    `json:"name"`        // roles.name
    Description *string   `json:"description"` // roles.description (nullable)
    CreatedAt   time.Time `json:"created_at"`  // roles.created_at
}

package model

import "time"

// User represents a row in the `users` table.  The password hash is a bcrypt
// digest; the plaintext never appears anywhere in the codebase.  Verification
// token columns are nullable and cleared once the address is confirmed.
//
// Fields:
//  ID                 – primary key identifier of the user.
//  Email              – unique email address.
//  Username           – unique screen name.
//  PasswordHash       – bcrypt hashed password.
//  EmailVerified      – whether the address has been confirmed.
//  VerificationToken  – pending email verification token (nullable).
//  VerificationExpiry – expiry of the pending token (nullable).
//  CreatedAt          – timestamp of creation.
//  UpdatedAt          – timestamp of last update.
type User struct {
    ID                 uint64     // users.id
    Email              string     // users.email
    Username           string     // users.username
    PasswordHash       string     // users.password_hash
    EmailVerified      bool       // users.email_verified
    VerificationToken  *string    // users.verification_token (nullable)
    VerificationExpiry *time.Time // users.verification_token_expires (nullable)
    CreatedAt          time.Time  // users.created_at
    UpdatedAt          time.Time  // users.updated_at
}

// UserFeatures is the 1:1 profile extension of a user.  Rows are created
// lazily on the first profile update when registration did not supply names.
type UserFeatures struct {
    UserID    uint64  // user_features.user_id
    FirstName *string // user_features.first_name (nullable)
    LastName  *string // user_features.last_name (nullable)
    Phone     *string // user_features.phone (nullable)
    RoleID    uint8   // user_features.role_id (references roles.id)
}

// Profile joins users and user_features with the resolved role name; it is
// what login and the profile endpoints hand back to clients.
type Profile struct {
    ID        uint64  `json:"id"`
    Email     string  `json:"email"`
    Username  string  `json:"username"`
    FirstName *string `json:"first_name"`
    LastName  *string `json:"last_name"`
    Phone     *string `json:"phone"`
    Role      string  `json:"role"`
}

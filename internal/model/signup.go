package model

import "time"

// Signup represents a row in the `user_game_signups` table.  A user may hold
// at most one signup at a time; the location is denormalized alongside the
// game for roster queries.
type Signup struct {
    UserID     uint64    `json:"user_id"`     // user_game_signups.user_id
    GameID     uint64    `json:"game_id"`     // user_game_signups.game_id
    VenueID    uint64    `json:"location_id"` // user_game_signups.location_id
    SignupTime time.Time `json:"signup_time"` // user_game_signups.signup_time
}

// RosterEntry is one player on a game's signup list, ordered by signup time.
type RosterEntry struct {
    UserID     uint64    `json:"user_id"`
    Username   string    `json:"username"`
    FirstName  *string   `json:"first_name"`
    LastName   *string   `json:"last_name"`
    SignupTime time.Time `json:"signup_time"`
    GameID     uint64    `json:"game_id,omitempty"`
    VenueName  string    `json:"location_name,omitempty"`
    GameDay    string    `json:"game_day,omitempty"`
    StartTime  string    `json:"start_time,omitempty"`
}

// CurrentGame describes the game a user is signed up for, joined with venue
// details for display.
type CurrentGame struct {
    GameID     uint64    `json:"game_id"`
    VenueID    uint64    `json:"location_id"`
    VenueName  string    `json:"location_name"`
    Address    string    `json:"address"`
    GameDay    string    `json:"game_day"`
    StartTime  string    `json:"start_time"`
    Notes      *string   `json:"notes"`
    SignupTime time.Time `json:"signup_time"`
}

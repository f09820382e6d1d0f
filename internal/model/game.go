package model

// Game represents a row in the `games` table: a recurring game slot at a
// venue.  GameDay is a weekday name and StartTime a clock string; both are
// presented to clients verbatim.
type Game struct {
    ID         uint64  `json:"id"`          // games.id
    VenueID    uint64  `json:"location_id"` // games.location_id
    GameDay    string  `json:"game_day"`    // games.game_day
    StartTime  string  `json:"start_time"`  // games.start_time
    Notes      *string `json:"notes"`       // games.notes (nullable)
    VenueName  string  `json:"location_name,omitempty"`
    VenueAddr  string  `json:"location_address,omitempty"`
}

package model

// Venue represents a row in the `locations` table: a place that hosts
// recurring poker games.
type Venue struct {
    ID      uint64 `json:"id"`      // locations.id
    Name    string `json:"name"`    // locations.name
    Address string `json:"address"` // locations.address
}

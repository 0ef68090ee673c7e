package domain

import "time"

// Credentials are entered on the login screen and live for one attempt.
type Credentials struct {
	Username string
	Password string
}

// Identity is what the account-admin API returns for a signed-in operator.
// ID addresses every later request for the operator's venue.
type Identity struct {
	ID   string
	Name string
}

// Tiers holds the five song-request price points. Regular is ordered high to
// low.
type Tiers struct {
	Custom  float64
	Regular [4]float64
}

// VenuePricing is the remote pricing record for one venue.
type VenuePricing struct {
	ID              string
	Name            string
	Location        string
	ChargeCustomers bool
	Amount          Tiers
}

// SaveRecord is one entry of the local save journal.
type SaveRecord struct {
	ID        int64
	VenueID   string
	Outcome   string
	Amount    Tiers
	CreatedAt time.Time
}

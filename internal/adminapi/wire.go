package adminapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vbonduro/venueadmin/internal/domain"
)

const successToken = "Success"

// envelope is the uniform wrapper around every API response.
type envelope struct {
	Response string          `json:"response"`
	Data     json.RawMessage `json:"data"`
}

func (e envelope) ok() bool { return e.Response == successToken }

// flexID accepts an id encoded as either a JSON string or a JSON number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type identityData struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

type amountTiers struct {
	Category6  float64 `json:"category_6"`
	Category7  float64 `json:"category_7"`
	Category8  float64 `json:"category_8"`
	Category9  float64 `json:"category_9"`
	Category10 float64 `json:"category_10"`
}

func tiersToWire(t domain.Tiers) amountTiers {
	return amountTiers{
		Category6:  t.Custom,
		Category7:  t.Regular[0],
		Category8:  t.Regular[1],
		Category9:  t.Regular[2],
		Category10: t.Regular[3],
	}
}

func (a amountTiers) tiers() domain.Tiers {
	return domain.Tiers{
		Custom:  a.Category6,
		Regular: [4]float64{a.Category7, a.Category8, a.Category9, a.Category10},
	}
}

type venueData struct {
	ID              flexID       `json:"id"`
	Name            string       `json:"name"`
	Location        string       `json:"location"`
	ChargeCustomers bool         `json:"charge_customers"`
	Amount          *amountTiers `json:"amount"`
}

type updateRequest struct {
	Amount amountTiers `json:"amount"`
}

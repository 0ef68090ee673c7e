package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vbonduro/venueadmin/internal/domain"
)

// Minimum amounts enforced while a venue charges customers.
const MinCustom = 99

var MinRegular = [4]float64{79, 59, 39, 19}

var ErrBelowMinimum = errors.New("amount below minimum")

// ValidationError names the first tier that failed its minimum.
type ValidationError struct {
	Tier    string
	Value   float64
	Minimum float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s amount %v is below minimum %v", e.Tier, e.Value, e.Minimum)
}

func (e *ValidationError) Unwrap() error { return ErrBelowMinimum }

// Draft is the editable copy of a venue's pricing. Amounts are kept as the
// operator typed them and coerced only when they are read as numbers.
type Draft struct {
	ChargeCustomers bool
	Custom          string
	Regular         [4]string
}

// DefaultDraft is what the editor shows when nothing could be loaded.
func DefaultDraft() Draft {
	return Draft{Custom: "0", Regular: [4]string{"0", "0", "0", "0"}}
}

func DraftFrom(v domain.VenuePricing) Draft {
	d := Draft{
		ChargeCustomers: v.ChargeCustomers,
		Custom:          FormatAmount(v.Amount.Custom),
	}
	for i, a := range v.Amount.Regular {
		d.Regular[i] = FormatAmount(a)
	}
	return d
}

// Editable reports whether the amount inputs and the save action are enabled.
func (d Draft) Editable() bool {
	return d.ChargeCustomers
}

func (d Draft) Tiers() domain.Tiers {
	t := domain.Tiers{Custom: Coerce(d.Custom)}
	for i, raw := range d.Regular {
		t.Regular[i] = Coerce(raw)
	}
	return t
}

// Coerce converts an entered amount to a number. Blank input is zero and
// anything that does not parse as a finite decimal is NaN.
func Coerce(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Validate checks the draft's amounts against the tier minimums. Drafts that
// do not charge customers always pass. NaN never satisfies a minimum.
func Validate(d Draft) error {
	if !d.ChargeCustomers {
		return nil
	}
	t := d.Tiers()
	if !(t.Custom >= MinCustom) {
		return &ValidationError{Tier: "custom", Value: t.Custom, Minimum: MinCustom}
	}
	for i, v := range t.Regular {
		if !(v >= MinRegular[i]) {
			return &ValidationError{Tier: fmt.Sprintf("regular %d", i+1), Value: v, Minimum: MinRegular[i]}
		}
	}
	return nil
}

// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Loose is a metric value as a row store or request body supplied it. It may
// be empty, non-numeric or negative; Float coerces it to a clean number.
type Loose string

// UnmarshalJSON accepts numbers, strings, booleans and null.
func (l *Loose) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*l = ""
			return nil //nolint:nilerr // malformed metrics coerce to zero
		}
		*l = Loose(s)
		return nil
	}
	// numbers keep their literal text; anything else is non-numeric
	*l = Loose(b)
	return nil
}

// Decimal parses the value, returning zero for anything that is not a
// non-negative number representable as a finite float64.
func (l Loose) Decimal() decimal.Decimal {
	s := strings.TrimSpace(string(l))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	if f, _ := d.Float64(); math.IsInf(f, 0) {
		return decimal.Zero
	}
	return d
}

// Float is Decimal as a float64.
func (l Loose) Float() float64 {
	return l.Decimal().InexactFloat64()
}

// ClientRecord is one client row read by a collaborator. Only the four metric
// fields feed the engine; display fields are carried through untouched.
type ClientRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	AccountCount Loose  `json:"account_count,omitempty"`

	AUA      Loose `json:"Total Portfolio AUA"`
	Fees     Loose `json:"TotalFees"`
	Logins   Loose `json:"LoginsL12M"`
	Meetings Loose `json:"MeetingsL12M"`
}

// Normalize applies the parse-or-zero coercion once, producing the clean
// numeric client the engine operates on.
func (r ClientRecord) Normalize() Client {
	return Client{
		ID:       strings.TrimSpace(r.ID),
		Name:     r.Name,
		AUA:      r.AUA.Float(),
		Fees:     r.Fees.Float(),
		Logins:   r.Logins.Float(),
		Meetings: r.Meetings.Float(),
	}
}

// Client is a coerced client: every metric is a finite, non-negative number.
type Client struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	AUA      float64 `json:"aua"`
	Fees     float64 `json:"fees"`
	Logins   float64 `json:"logins"`
	Meetings float64 `json:"meetings"`
}

// Engagement is the combined logins and meetings count used for ranking.
func (c Client) Engagement() float64 {
	return c.Logins + c.Meetings
}

// NormalizeAll coerces a whole cohort, preserving order.
func NormalizeAll(records []ClientRecord) []Client {
	out := make([]Client, len(records))
	for i, r := range records {
		out[i] = r.Normalize()
	}
	return out
}

package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Money is a currency amount. The backend sends plain JSON numbers.
type Money = decimal.Decimal

// FormatMoney renders an amount with two decimals.
func FormatMoney(m Money) string {
	return m.StringFixed(2)
}

// WireNumber renders an amount as a bare JSON number for request bodies.
func WireNumber(m Money) json.Number {
	return json.Number(m.String())
}

// AccountNumber is a bank account number. The backend serializes it either as
// a number or as a string, so both are accepted.
type AccountNumber string

// UnmarshalJSON accepts a JSON number or string.
func (a *AccountNumber) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AccountNumber(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("account number: %w", err)
	}
	*a = AccountNumber(n.String())
	return nil
}

// ParseAccountNumber validates a user-entered account number.
func ParseAccountNumber(raw string) (AccountNumber, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("account number is required")
	}
	if _, err := strconv.ParseUint(trimmed, 10, 64); err != nil {
		return "", fmt.Errorf("account number %q must be numeric", trimmed)
	}
	return AccountNumber(trimmed), nil
}

// Wire renders the account number as a bare JSON number.
func (a AccountNumber) Wire() json.Number {
	return json.Number(a)
}

// Timestamp tolerates RFC3339 and zone-less ISO local date-times.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON parses a timestamp string; null and empty strings yield zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unsupported format %q", s)
}

// MarshalJSON writes RFC3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

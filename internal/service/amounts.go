package service

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/market-portal/internal/domain"
)

// parseAmount reads a user-entered money amount. Zero is allowed only when allowZero is set.
func parseAmount(raw string, allowZero bool) (domain.Money, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if allowZero {
			return decimal.Zero, nil
		}
		return decimal.Zero, errors.New("amount is required")
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, errors.New("must be a number")
	}
	if allowZero && amount.IsNegative() {
		return decimal.Zero, errors.New("must not be negative")
	}
	if !allowZero && !amount.IsPositive() {
		return decimal.Zero, errors.New("must be greater than zero")
	}
	return amount, nil
}

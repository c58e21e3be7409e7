package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(id int64, price string, qty int) CartLine {
	p := decimal.RequireFromString(price)
	return CartLine{
		ID:       id,
		Product:  CartProduct{ID: id, Name: "p", Price: p},
		Quantity: qty,
		Subtotal: p.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func TestAggregate_Example(t *testing.T) {
	agg := Aggregate([]CartLine{line(1, "10", 2), line(2, "5", 1)})

	assert.Equal(t, "25.00", FormatMoney(agg.Subtotal))
	assert.Equal(t, "2.50", FormatMoney(agg.Tax))
	assert.Equal(t, "27.50", FormatMoney(agg.Total))
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil)
	assert.True(t, agg.Subtotal.IsZero())
	assert.True(t, agg.Tax.IsZero())
	assert.True(t, agg.Total.IsZero())
}

func TestAggregate_TaxAndTotalProportions(t *testing.T) {
	carts := [][]CartLine{
		{line(1, "0.01", 1)},
		{line(1, "19.99", 3), line(2, "0.33", 7)},
		{line(1, "1234.56", 1), line(2, "9.95", 12), line(3, "0.10", 99)},
	}
	rate := decimal.RequireFromString("1.10")
	for _, lines := range carts {
		agg := Aggregate(lines)
		assert.True(t, agg.Tax.Equal(agg.Subtotal.Mul(TaxRate)), "tax for %v", agg.Subtotal)
		assert.Equal(t, agg.Subtotal.Mul(rate).StringFixed(2), FormatMoney(agg.Total))
	}
}

func TestAggregate_TrustsServerSubtotal(t *testing.T) {
	l := line(1, "10", 2)
	l.Subtotal = decimal.RequireFromString("18")

	agg := Aggregate([]CartLine{l})
	assert.Equal(t, "18.00", FormatMoney(agg.Subtotal))
}

package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid inputs", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), INR)
		require.NoError(t, err)
		assert.Equal(t, INR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
	})

	t.Run("fails with empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		require.Error(t, err)
	})

	t.Run("parses from string", func(t *testing.T) {
		m, err := NewMoneyFromString("99.99", USD)
		require.NoError(t, err)
		assert.Equal(t, "99.99", m.StringFixed(2))
	})

	t.Run("rejects malformed string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", INR)
		require.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	ten, _ := NewMoneyINRFromString("10.00")
	five, _ := NewMoneyINRFromString("5.00")

	t.Run("adds same currency", func(t *testing.T) {
		sum, err := ten.Add(five)
		require.NoError(t, err)
		assert.Equal(t, "15.00", sum.StringFixed(2))
	})

	t.Run("rejects mixed currency addition", func(t *testing.T) {
		other, _ := NewMoneyFromString("5.00", USD)
		_, err := ten.Add(other)
		require.Error(t, err)
	})

	t.Run("subtracts same currency", func(t *testing.T) {
		diff, err := ten.Subtract(five)
		require.NoError(t, err)
		assert.Equal(t, "5.00", diff.StringFixed(2))
	})

	t.Run("multiplies by quantity", func(t *testing.T) {
		total := ten.MultiplyByInt(3)
		assert.Equal(t, "30.00", total.StringFixed(2))
	})

	t.Run("zero value", func(t *testing.T) {
		assert.True(t, ZeroINR().IsZero())
		assert.Equal(t, INR, ZeroINR().Currency())
	})
}

func TestMoneyMinorUnits(t *testing.T) {
	t.Run("converts rupees to paise exactly", func(t *testing.T) {
		m, _ := NewMoneyINRFromString("123.45")
		units, err := m.MinorUnits()
		require.NoError(t, err)
		assert.Equal(t, int64(12345), units)
	})

	t.Run("whole amounts convert cleanly", func(t *testing.T) {
		m, _ := NewMoneyINRFromString("25")
		units, err := m.MinorUnits()
		require.NoError(t, err)
		assert.Equal(t, int64(2500), units)
	})

	t.Run("rejects sub-paise precision", func(t *testing.T) {
		m, _ := NewMoneyINRFromString("10.001")
		_, err := m.MinorUnits()
		require.Error(t, err)
	})

	t.Run("round trips from minor units", func(t *testing.T) {
		m := FromMinorUnits(2500, INR)
		assert.Equal(t, "25.00", m.StringFixed(2))
		units, err := m.MinorUnits()
		require.NoError(t, err)
		assert.Equal(t, int64(2500), units)
	})
}

func TestMoneyComparison(t *testing.T) {
	ten, _ := NewMoneyINRFromString("10.00")
	five, _ := NewMoneyINRFromString("5.00")

	t.Run("less than", func(t *testing.T) {
		lt, err := five.LessThan(ten)
		require.NoError(t, err)
		assert.True(t, lt)
	})

	t.Run("greater than", func(t *testing.T) {
		gt, err := ten.GreaterThan(five)
		require.NoError(t, err)
		assert.True(t, gt)
	})

	t.Run("equality ignores representation", func(t *testing.T) {
		a, _ := NewMoneyINRFromString("10")
		assert.True(t, a.Equals(ten))
	})

	t.Run("mixed currency comparison errors", func(t *testing.T) {
		other, _ := NewMoneyFromString("10.00", EUR)
		_, err := ten.LessThan(other)
		require.Error(t, err)
	})
}

func TestMoneyJSON(t *testing.T) {
	m, _ := NewMoneyINRFromString("49.50")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"49.5","currency":"INR"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(m))
}

package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart(t *testing.T) {

	t.Run("Add inserts and increments", func(t *testing.T) {
		cart := New()
		cart.Add("A")
		cart.Add("A")
		cart.Add("B")

		assert.Equal(t, []Line{{ProductUID: "A", Quantity: 2}, {ProductUID: "B", Quantity: 1}}, cart.Lines())
		assert.Equal(t, 3, cart.TotalCount())
	})

	t.Run("Decrease removes at zero", func(t *testing.T) {
		cart := New(Line{ProductUID: "A", Quantity: 1}, Line{ProductUID: "B", Quantity: 2})

		cart.Decrease("A")

		assert.Equal(t, []Line{{ProductUID: "B", Quantity: 2}}, cart.Lines())
		assert.Equal(t, 2, cart.TotalCount())
		assert.Equal(t, 0, cart.QuantityOf("A"))
	})

	t.Run("Decrease unknown product", func(t *testing.T) {
		cart := New(Line{ProductUID: "B", Quantity: 2})

		cart.Decrease("A")

		assert.Equal(t, []Line{{ProductUID: "B", Quantity: 2}}, cart.Lines())
		assert.Equal(t, 2, cart.TotalCount())
	})

	t.Run("Clear", func(t *testing.T) {
		cart := New(Line{ProductUID: "A", Quantity: 3})

		cart.Clear()

		assert.True(t, cart.IsEmpty())
		assert.Empty(t, cart.Lines())
		assert.Equal(t, 0, cart.TotalCount())
	})

	t.Run("New drops invalid and merges duplicate lines", func(t *testing.T) {
		cart := New(
			Line{ProductUID: "A", Quantity: 1},
			Line{ProductUID: "", Quantity: 5},
			Line{ProductUID: "B", Quantity: 0},
			Line{ProductUID: "C", Quantity: -2},
			Line{ProductUID: "A", Quantity: 2},
		)

		assert.Equal(t, []Line{{ProductUID: "A", Quantity: 3}}, cart.Lines())
		assert.Equal(t, 3, cart.TotalCount())
	})

	t.Run("Quantity never exceeds the maximum", func(t *testing.T) {
		cart := New(
			Line{ProductUID: "A", Quantity: MaxQuantity},
			Line{ProductUID: "B", Quantity: MaxQuantity + 1},
			Line{ProductUID: "C", Quantity: 60},
			Line{ProductUID: "C", Quantity: 60},
		)
		cart.Add("A")

		assert.Equal(t, []Line{{ProductUID: "A", Quantity: MaxQuantity}, {ProductUID: "C", Quantity: MaxQuantity}}, cart.Lines())
		assert.Equal(t, 2*MaxQuantity, cart.TotalCount())
	})

	t.Run("Copies do not share state", func(t *testing.T) {
		original := New(Line{ProductUID: "A", Quantity: 1}, Line{ProductUID: "B", Quantity: 1})

		copied := original
		copied.Add("A")
		copied.Decrease("B")

		assert.Equal(t, []Line{{ProductUID: "A", Quantity: 1}, {ProductUID: "B", Quantity: 1}}, original.Lines())
		assert.Equal(t, 2, original.TotalCount())
	})

	t.Run("Total count follows every mutation", func(t *testing.T) {
		cart := New()
		operations := []func(){
			func() { cart.Add("A") },
			func() { cart.Add("B") },
			func() { cart.Decrease("A") },
			func() { cart.Decrease("X") },
			func() { cart.Add("B") },
			func() { cart.Add("C") },
			func() { cart.Decrease("B") },
		}
		for _, op := range operations {
			op()

			sum := 0
			for _, line := range cart.Lines() {
				assert.True(t, line.Quantity >= 1)
				sum += line.Quantity
			}
			assert.Equal(t, sum, cart.TotalCount())
		}
	})
}

func TestCookieCodec(t *testing.T) {
	cart := New(Line{ProductUID: "latte", Quantity: 2}, Line{ProductUID: "croissant", Quantity: 1})

	encoded, err := Encode(cart)
	require.NoError(t, err)
	assert.NotContains(t, encoded, ";")

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, cart.Lines(), decoded.Lines())
	assert.Equal(t, 3, decoded.TotalCount())
}

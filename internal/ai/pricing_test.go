package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPricingTable_Cost(t *testing.T) {
	t.Run("zero tokens cost nothing", func(t *testing.T) {
		for model := range DefaultPricing {
			assert.Zero(t, DefaultPricing.Cost(0, 0, model), model)
		}
		assert.Zero(t, DefaultPricing.Cost(0, 0, "made-up-model"))
	})

	t.Run("known model", func(t *testing.T) {
		// 1K input at 0.000075 plus 2K output at 0.0003.
		cost := DefaultPricing.Cost(1000, 2000, "gemini-1.5-flash")
		assert.InDelta(t, 0.000075+2*0.0003, cost, 1e-12)
	})

	t.Run("linear in tokens", func(t *testing.T) {
		base := DefaultPricing.Cost(1000, 500, "gemini-1.5-pro")
		tripled := DefaultPricing.Cost(3000, 1500, "gemini-1.5-pro")
		assert.InDelta(t, 3*base, tripled, 1e-12)

		inputOnly := DefaultPricing.Cost(1000, 0, "gemini-1.5-pro")
		outputOnly := DefaultPricing.Cost(0, 500, "gemini-1.5-pro")
		assert.InDelta(t, base, inputOnly+outputOnly, 1e-12)
	})

	t.Run("unknown model falls back deterministically", func(t *testing.T) {
		fallback := DefaultPricing.Cost(10000, 10000, FallbackModel)
		assert.Equal(t, fallback, DefaultPricing.Cost(10000, 10000, "gemini-99-ultra"))
		assert.Equal(t, fallback, DefaultPricing.Cost(10000, 10000, ""))
	})

	t.Run("2.5-flash priced like 1.5-flash", func(t *testing.T) {
		assert.Equal(t,
			DefaultPricing.Cost(5000, 5000, "gemini-1.5-flash"),
			DefaultPricing.Cost(5000, 5000, "gemini-2.5-flash"),
		)
	})
}

package ai

// ModelPrice is the per-1K-token price of one model, in USD.
type ModelPrice struct {
	InputPer1K  float64
	OutputPer1K float64
}

// PricingTable maps model names to their per-1K-token prices.
type PricingTable map[string]ModelPrice

// FallbackModel is the price entry used when a model is not in the table.
const FallbackModel = "gemini-1.5-flash"

// DefaultPricing holds approximate Gemini rates per 1K tokens.
var DefaultPricing = PricingTable{
	"gemini-1.5-flash": {InputPer1K: 0.000075, OutputPer1K: 0.0003},
	"gemini-1.5-pro":   {InputPer1K: 0.00125, OutputPer1K: 0.005},
	"gemini-1.0-pro":   {InputPer1K: 0.0005, OutputPer1K: 0.0015},
	"gemini-2.5-flash": {InputPer1K: 0.000075, OutputPer1K: 0.0003},
}

// Cost converts accumulated token counts into a monetary estimate. An
// unrecognized model falls back to the FallbackModel entry.
func (p PricingTable) Cost(inputTokens, outputTokens int, modelName string) float64 {
	price, ok := p[modelName]
	if !ok {
		price = p[FallbackModel]
	}

	inputCost := float64(inputTokens) / 1000 * price.InputPer1K
	outputCost := float64(outputTokens) / 1000 * price.OutputPer1K
	return inputCost + outputCost
}

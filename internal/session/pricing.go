package session

import (
	"fmt"
	"math"
	"strings"
)

type Tier string

const (
	TierPremium  Tier = "premium"
	TierStandard Tier = "standard"
)

func ParseTier(value string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(TierPremium):
		return TierPremium, nil
	case string(TierStandard):
		return TierStandard, nil
	default:
		return "", fmt.Errorf("invalid model tier: %s", value)
	}
}

// charsPerToken approximates token counts from character counts; cost
// accounting here is an estimate, not a token-accurate bill.
const charsPerToken = 4

// Prices are USD per 1K tokens.
const (
	premiumPromptPrice     = 0.03
	premiumGenerationPrice = 0.06

	standardPromptPrice     = 0.002
	standardGenerationPrice = 0.002
)

type pricing struct {
	prompt     float64
	generation float64
}

func pricingFor(tier Tier) pricing {
	if tier == TierPremium {
		return pricing{prompt: premiumPromptPrice, generation: premiumGenerationPrice}
	}
	return pricing{prompt: standardPromptPrice, generation: standardGenerationPrice}
}

func spend(chars int, pricePerKTokens float64) float64 {
	return round3(float64(chars) / charsPerToken * pricePerKTokens / 1000)
}

func round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}

package botlink

// PagePath is the relative path of the protected bot page. Responses carry
// the relative form only, so the same payload is valid on every allowed
// domain.
const PagePath = "/bot.html"

// StrategyConfig is the trading configuration returned to a verified
// client. The values are fixed per release; ServerDomain echoes the host
// that served the request for debugging.
type StrategyConfig struct {
	MartingaleMultiplier float64  `json:"martingaleMultiplier"`
	MaxConsecutiveLosses int      `json:"maxConsecutiveLosses"`
	BaseStake            float64  `json:"baseStake"`
	Currency             string   `json:"currency"`
	Symbols              []string `json:"symbols"`
	Strategy             string   `json:"strategy"`
	Payout               float64  `json:"payout"`
	RiskLevel            string   `json:"riskLevel"`
	Version              string   `json:"version"`
	ServerDomain         string   `json:"serverDomain,omitempty"`
}

// DefaultConfig returns the production strategy configuration.
func DefaultConfig(serverDomain string) StrategyConfig {
	return StrategyConfig{
		MartingaleMultiplier: 2.0,
		MaxConsecutiveLosses: 7,
		BaseStake:            1.0,
		Currency:             "USD",
		Symbols:              []string{"R_100", "R_50", "R_25"},
		Strategy:             "DIGITMATCH_INSTANT",
		Payout:               792.9,
		RiskLevel:            "MEDIUM",
		Version:              "2.0.0",
		ServerDomain:         serverDomain,
	}
}

// Package botlink issues the bot strategy configuration and generates the
// deep links that hand trading-account credentials to the bot page.
package botlink

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/BasilOkoth/digitest/internal/util"
	"github.com/BasilOkoth/digitest/token"
)

// Account is one trading-account credential triple supplied by the client.
type Account struct {
	ID       string
	Token    string
	Currency string
}

// Link is a generated bot link in both host-independent and absolute form.
// The two encode identical query payloads.
type Link struct {
	Relative string
	Absolute string
}

// Generator validates verification tokens and builds bot links. Stateless
// apart from the issuer; safe for concurrent use.
type Generator struct {
	issuer *token.Issuer
}

func NewGenerator(issuer *token.Issuer) *Generator {
	return &Generator{issuer: issuer}
}

// IssueConfig returns the strategy configuration and the relative bot page
// path for a valid verification token.
func (g *Generator) IssueConfig(verif, serverDomain string) (StrategyConfig, string, error) {
	if err := g.issuer.Validate(verif); err != nil {
		return StrategyConfig{}, "", err
	}
	return DefaultConfig(serverDomain), PagePath, nil
}

// Generate builds a bot link carrying up to two account credential triples.
// A missing primary account id is synthesized, missing currencies default
// to USD, and a fresh anti-replay state nonce is minted on every call.
// requestOrigin (scheme://host of the serving request) forms the absolute
// link prefix.
func (g *Generator) Generate(verif string, primary, secondary Account, requestOrigin string) (Link, error) {
	if err := g.issuer.Validate(verif); err != nil {
		return Link{}, err
	}
	if primary.ID == "" {
		primary.ID = NewAccountID()
	}
	if primary.Currency == "" {
		primary.Currency = "USD"
	}
	if secondary.Currency == "" {
		secondary.Currency = "USD"
	}
	state, err := g.issuer.State()
	if err != nil {
		return Link{}, err
	}

	// The bot page parses parameters positionally, so encoding order is
	// part of the contract; url.Values would sort keys alphabetically.
	query := encodeOrdered([][2]string{
		{"acct1", primary.ID},
		{"token1", primary.Token},
		{"cur1", primary.Currency},
		{"acct2", secondary.ID},
		{"token2", secondary.Token},
		{"cur2", secondary.Currency},
		{"state", state},
		{"verif", verif},
	})

	rel := PagePath + "?" + query
	return Link{
		Relative: rel,
		Absolute: requestOrigin + rel,
	}, nil
}

// NewAccountID synthesizes a pseudo account id in the CR<digits> shape used
// by real trading accounts.
func NewAccountID() string {
	n, err := util.RandomIntn(10000000)
	if err != nil {
		// crypto/rand read failure; fall back to a fixed id rather than
		// propagate an error through a best-effort default.
		n = 0
	}
	return "CR" + strconv.Itoa(n)
}

func encodeOrdered(pairs [][2]string) string {
	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p[0]))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p[1]))
	}
	return sb.String()
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// Outcome identifies one side of a match market.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeDraw Outcome = "draw"
	OutcomeAway Outcome = "away"
)

// Market declares which outcomes a sport's main market carries.
// The detector and aggregator only look at the declared set, so a stray
// field on a record can never leak into the arbitrage math.
type Market struct {
	Name     string
	Outcomes []Outcome
}

var (
	// ThreeWay is the 1X2 market (football, ice hockey regular time, ...).
	ThreeWay = Market{Name: "1x2", Outcomes: []Outcome{OutcomeHome, OutcomeDraw, OutcomeAway}}

	// TwoWay is the moneyline market for sports without a draw (tennis, volleyball, ...).
	TwoWay = Market{Name: "moneyline", Outcomes: []Outcome{OutcomeHome, OutcomeAway}}
)

// MarketFor returns the market declared for a sport, defaulting to 1X2.
func MarketFor(sport string, twoWaySports []string) Market {
	s := strings.ToLower(strings.TrimSpace(sport))
	for _, tw := range twoWaySports {
		if strings.ToLower(strings.TrimSpace(tw)) == s {
			return TwoWay
		}
	}
	return ThreeWay
}

// Observation is one bookmaker's quote for one match at one point in time.
// Observations are immutable once collected; a later scrape supersedes an
// earlier one, it never updates it in place.
type Observation struct {
	Sport      string    `json:"sport"`
	Country    string    `json:"country"`
	League     string    `json:"league"`
	Match      string    `json:"match"` // "Home - Away"
	Home       string    `json:"home"`
	Away       string    `json:"away"`
	MatchTime  time.Time `json:"match_time"`
	UpdateTime time.Time `json:"update_time"`
	Book       string    `json:"book"` // bookmaker name, lower-cased

	// Odds per outcome in decimal (European) format. An absent key means
	// the bookmaker did not quote that outcome (e.g. no draw price).
	Odds map[Outcome]float64 `json:"odds"`
}

// Validate checks the observation invariant: a non-empty book name and at
// least one positive quote. It does not mutate the observation; consumers
// must still ignore individual non-positive quotes.
func (o *Observation) Validate() error {
	if strings.TrimSpace(o.Book) == "" {
		return fmt.Errorf("observation for %q: empty book name", o.Match)
	}
	for _, odd := range o.Odds {
		if odd > 0 {
			return nil
		}
	}
	return fmt.Errorf("observation %s/%q: no positive odds", o.Book, o.Match)
}

// GroupKey identifies the match group an observation belongs to. League is
// part of the key: match names are only unique within a league.
func (o *Observation) GroupKey() string {
	return o.League + "|" + o.Match
}

// BestPrice is the maximum quote seen for one outcome and the bookmaker
// that offered it.
type BestPrice struct {
	Odds float64 `json:"odds"`
	Book string  `json:"book"`
}

// BestOdds is the per-match summary: one metadata snapshot plus the best
// price per outcome across every observed bookmaker.
//
// The metadata fields are copied verbatim from one arbitrary (first valid)
// member of the group. If bookmakers disagree on MatchTime the row carries
// one representative value, not a reconciled one.
type BestOdds struct {
	Sport      string    `json:"sport"`
	Country    string    `json:"country"`
	League     string    `json:"league"`
	Match      string    `json:"match"`
	Home       string    `json:"home"`
	Away       string    `json:"away"`
	MatchTime  time.Time `json:"match_time"`
	UpdateTime time.Time `json:"update_time"`

	Best map[Outcome]BestPrice `json:"best"`
}

// ArbitrageRow is a BestOdds row annotated with the reciprocal-odds sum.
// Arbitrage is true iff the sum is below 1: the implied probabilities
// across the best prices add up to less than certainty.
type ArbitrageRow struct {
	BestOdds

	ReciprocalSum float64 `json:"reciprocal_sum"`
	Arbitrage     bool    `json:"arbitrage"`
}

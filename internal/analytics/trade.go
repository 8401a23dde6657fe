package analytics

import (
	"errors"
	"fmt"
)

// TradeVerdict is the headline recommendation for a trade proposal
type TradeVerdict string

const (
	TradeAccept  TradeVerdict = "accept"
	TradeDecline TradeVerdict = "decline"
	TradeEven    TradeVerdict = "even"
)

// tradeMargin is the net total Z a trade must move before it is called either way
const tradeMargin = 0.5

// TradeEvaluation compares the combined value of both sides of a trade
type TradeEvaluation struct {
	GiveTotalZ     float64        `json:"give_total_z"`
	ReceiveTotalZ  float64        `json:"receive_total_z"`
	NetValueChange float64        `json:"net_value_change"`
	CategoryImpact CategoryScores `json:"category_impact"`
	Recommendation TradeVerdict   `json:"recommendation"`
}

// EvaluateTrade sums Z-scores for the outgoing and incoming players within one table
func EvaluateTrade(table *ScoreTable, give, receive []string) (TradeEvaluation, error) {
	eval := TradeEvaluation{
		CategoryImpact: make(CategoryScores, len(categories)),
		Recommendation: TradeEven,
	}
	if len(give) == 0 && len(receive) == 0 {
		return eval, errors.New("trade has no players")
	}

	for _, id := range give {
		row, ok := table.Get(id)
		if !ok {
			return eval, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
		}
		eval.GiveTotalZ += row.TotalZ
		for _, c := range categories {
			eval.CategoryImpact[c] -= row.Z[c]
		}
	}
	for _, id := range receive {
		row, ok := table.Get(id)
		if !ok {
			return eval, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
		}
		eval.ReceiveTotalZ += row.TotalZ
		for _, c := range categories {
			eval.CategoryImpact[c] += row.Z[c]
		}
	}

	eval.NetValueChange = eval.ReceiveTotalZ - eval.GiveTotalZ
	switch {
	case eval.NetValueChange > tradeMargin:
		eval.Recommendation = TradeAccept
	case eval.NetValueChange < -tradeMargin:
		eval.Recommendation = TradeDecline
	}
	return eval, nil
}

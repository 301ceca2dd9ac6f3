package core

// engine.go – rule dispatch. A single switch on the matching-rule variant
// routes to the appropriate reducer; all three current variants share the
// outcomes reducer. The switch is the seam where a future state-change
// variant gets its own shards-state-changes reducer without touching
// callers.

import (
	"context"
	"fmt"

	"queryapi/primitives"
)

// ReduceIndexerRuleMatches evaluates rule against one block message and
// returns the matches, observing ctx between shards.
func ReduceIndexerRuleMatches(ctx context.Context, rule *IndexerRule, msg *primitives.StreamerMessage, chainID ChainID) ([]IndexerRuleMatch, error) {
	switch rule.MatchingRule.(type) {
	case ActionAnyRule, ActionFunctionCallRule, EventRule:
		return ReduceIndexerRuleMatchesFromOutcomes(ctx, rule, msg, chainID)
	default:
		return nil, fmt.Errorf("reduce %s: unsupported matching rule %T", rule.Identity(), rule.MatchingRule)
	}
}

// ReduceIndexerRuleMatchesSync is the synchronous form of
// ReduceIndexerRuleMatches; both return equal results for equal inputs.
func ReduceIndexerRuleMatchesSync(rule *IndexerRule, msg *primitives.StreamerMessage, chainID ChainID) ([]IndexerRuleMatch, error) {
	switch rule.MatchingRule.(type) {
	case ActionAnyRule, ActionFunctionCallRule, EventRule:
		return ReduceIndexerRuleMatchesFromOutcomesSync(rule, msg, chainID)
	default:
		return nil, fmt.Errorf("reduce %s: unsupported matching rule %T", rule.Identity(), rule.MatchingRule)
	}
}

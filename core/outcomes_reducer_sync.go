package core

// outcomes_reducer_sync.go – the purely synchronous reducer flavor. Same
// semantics and results as the context flavor; it exists for callers that
// evaluate rules inline and never need cancellation.

import "queryapi/primitives"

// ReduceIndexerRuleMatchesFromOutcomesSync scans msg's receipt execution
// outcomes in shard-then-receipt order and returns the match records for
// rule.
func ReduceIndexerRuleMatchesFromOutcomesSync(rule *IndexerRule, msg *primitives.StreamerMessage, chainID ChainID) ([]IndexerRuleMatch, error) {
	var hits []*primitives.IndexerExecutionOutcomeWithReceipt
	for si := range msg.Shards {
		if hit := firstMatchingOutcome(rule.MatchingRule, &msg.Shards[si]); hit != nil {
			hits = append(hits, hit)
			break
		}
	}
	return buildIndexerRuleMatches(rule, hits, msg, chainID)
}

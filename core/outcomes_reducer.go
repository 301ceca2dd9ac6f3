package core

// outcomes_reducer.go – the context-accepting reducer flavor. It walks the
// block's shards in order, applies the predicate matcher, and builds one
// match record per hit. The coordinator drives many of these concurrently
// under a bounded budget; cancellation is observed between shards, never
// inside the per-outcome predicate.

import (
	"context"
	"fmt"

	"queryapi/primitives"
)

// ReduceIndexerRuleMatchesFromOutcomes scans msg's receipt execution
// outcomes in shard-then-receipt order and returns the match records for
// rule. It stops early if ctx is canceled.
func ReduceIndexerRuleMatchesFromOutcomes(ctx context.Context, rule *IndexerRule, msg *primitives.StreamerMessage, chainID ChainID) ([]IndexerRuleMatch, error) {
	var hits []*primitives.IndexerExecutionOutcomeWithReceipt
	for si := range msg.Shards {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("reduce %s at block %d: %w", rule.Identity(), msg.Block.Header.Height, err)
		}
		if hit := firstMatchingOutcome(rule.MatchingRule, &msg.Shards[si]); hit != nil {
			hits = append(hits, hit)
			// One match per (rule, block) for now: the first qualifying
			// outcome wins. Lifting this to every qualifying outcome is a
			// local change here and in the sync flavor.
			break
		}
	}
	return buildIndexerRuleMatches(rule, hits, msg, chainID)
}

// firstMatchingOutcome returns the first outcome of the shard satisfying
// the rule, in receipt order, or nil.
func firstMatchingOutcome(rule MatchingRule, shard *primitives.IndexerShard) *primitives.IndexerExecutionOutcomeWithReceipt {
	for oi := range shard.ReceiptExecutionOutcomes {
		outcome := &shard.ReceiptExecutionOutcomes[oi]
		if Matches(rule, outcome) {
			return outcome
		}
	}
	return nil
}

func buildIndexerRuleMatches(rule *IndexerRule, hits []*primitives.IndexerExecutionOutcomeWithReceipt, msg *primitives.StreamerMessage, chainID ChainID) ([]IndexerRuleMatch, error) {
	matches := make([]IndexerRuleMatch, 0, len(hits))
	for _, outcome := range hits {
		m, err := buildIndexerRuleMatch(rule, outcome, msg.Block.Header.Hash, msg.Block.Header.Height, chainID)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func buildIndexerRuleMatch(rule *IndexerRule, outcome *primitives.IndexerExecutionOutcomeWithReceipt, blockHash string, blockHeight uint64, chainID ChainID) (IndexerRuleMatch, error) {
	payload, err := buildIndexerRuleMatchPayload(rule, outcome, blockHash, blockHeight)
	if err != nil {
		return IndexerRuleMatch{}, err
	}
	return IndexerRuleMatch{
		ChainID:         chainID,
		IndexerRuleID:   rule.ID,
		IndexerRuleName: rule.Name,
		Payload:         payload,
		BlockHeight:     blockHeight,
	}, nil
}

func buildIndexerRuleMatchPayload(rule *IndexerRule, outcome *primitives.IndexerExecutionOutcomeWithReceipt, blockHash string, blockHeight uint64) (IndexerRuleMatchPayload, error) {
	// A future enrichment pass will walk from the receipt back to its
	// originating transaction; until then the hash is always absent.
	var transactionHash *string

	switch r := rule.MatchingRule.(type) {
	case ActionAnyRule, ActionFunctionCallRule:
		return NewActionsPayload(blockHash, outcome.Receipt.ReceiptID, transactionHash), nil
	case EventRule:
		event := firstMatchingEvent(&r, outcome.ExecutionOutcome.Outcome.Logs)
		if event == nil {
			// The predicate said yes with the same routine, so a zero-survivor
			// rescan means the inputs changed under us.
			return IndexerRuleMatchPayload{}, fmt.Errorf("build payload for %s at block %d: no matching event log in receipt %s", rule.Identity(), blockHeight, outcome.Receipt.ReceiptID)
		}
		var data *string
		if event.Data != nil {
			text := string(event.Data)
			data = &text
		}
		return NewEventsPayload(blockHash, outcome.Receipt.ReceiptID, transactionHash, event.Event, event.Standard, event.Version, data), nil
	default:
		return IndexerRuleMatchPayload{}, fmt.Errorf("build payload for %s at block %d: unsupported matching rule %T", rule.Identity(), blockHeight, rule.MatchingRule)
	}
}

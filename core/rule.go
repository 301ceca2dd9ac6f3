package core

// rule.go – the declarative rule model. A rule pairs optional identity with
// exactly one matching-rule variant; the engine borrows rules read-only for
// the duration of one block evaluation.

import (
	"encoding/json"
	"fmt"
)

// IndexerRuleKind classifies what a rule selects on.
type IndexerRuleKind string

const (
	IndexerRuleKindAction IndexerRuleKind = "Action"
	IndexerRuleKindEvent  IndexerRuleKind = "Event"
)

// Status filters receipts by their terminal execution status.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFail    Status = "FAIL"
	StatusAny     Status = "ANY"
)

// Matching-rule discriminators as they appear in registry JSON.
const (
	matchingRuleTagActionAny          = "ACTION_ANY"
	matchingRuleTagActionFunctionCall = "ACTION_FUNCTION_CALL"
	matchingRuleTagEvent              = "EVENT"
)

// MatchingRule is a closed union: exactly ActionAnyRule,
// ActionFunctionCallRule or EventRule. Consumers type-switch exhaustively.
type MatchingRule interface {
	isMatchingRule()
}

// ActionAnyRule matches any action receipt touching the account pattern.
type ActionAnyRule struct {
	AffectedAccountID string `json:"affected_account_id"`
	Status            Status `json:"status"`
}

// ActionFunctionCallRule matches function-call receipts whose method name is
// listed in Function.
type ActionFunctionCallRule struct {
	AffectedAccountID string `json:"affected_account_id"`
	Status            Status `json:"status"`
	Function          string `json:"function"`
}

// EventRule matches receipts emitting a structured event log whose
// event/standard/version fields satisfy the three glob patterns.
type EventRule struct {
	ContractAccountID string `json:"contract_account_id"`
	Event             string `json:"event"`
	Standard          string `json:"standard"`
	Version           string `json:"version"`
}

func (ActionAnyRule) isMatchingRule()          {}
func (ActionFunctionCallRule) isMatchingRule() {}
func (EventRule) isMatchingRule()              {}

// IndexerRule is one registered filter. ID and Name are optional; matches
// copy them by value so they outlive the per-block borrow of the rule.
type IndexerRule struct {
	IndexerRuleKind IndexerRuleKind
	MatchingRule    MatchingRule
	ID              *uint32
	Name            *string
}

type indexerRuleJSON struct {
	IndexerRuleKind IndexerRuleKind `json:"indexer_rule_kind"`
	MatchingRule    json.RawMessage `json:"matching_rule"`
	ID              *uint32         `json:"id"`
	Name            *string         `json:"name"`
}

type matchingRuleJSON struct {
	Rule              string `json:"rule"`
	AffectedAccountID string `json:"affected_account_id,omitempty"`
	Status            Status `json:"status,omitempty"`
	Function          string `json:"function,omitempty"`
	ContractAccountID string `json:"contract_account_id,omitempty"`
	Event             string `json:"event,omitempty"`
	Standard          string `json:"standard,omitempty"`
	Version           string `json:"version,omitempty"`
}

func (r IndexerRule) MarshalJSON() ([]byte, error) {
	var mr matchingRuleJSON
	switch v := r.MatchingRule.(type) {
	case ActionAnyRule:
		mr = matchingRuleJSON{Rule: matchingRuleTagActionAny, AffectedAccountID: v.AffectedAccountID, Status: v.Status}
	case ActionFunctionCallRule:
		mr = matchingRuleJSON{Rule: matchingRuleTagActionFunctionCall, AffectedAccountID: v.AffectedAccountID, Status: v.Status, Function: v.Function}
	case EventRule:
		mr = matchingRuleJSON{Rule: matchingRuleTagEvent, ContractAccountID: v.ContractAccountID, Event: v.Event, Standard: v.Standard, Version: v.Version}
	default:
		return nil, fmt.Errorf("encode rule: unsupported matching rule %T", r.MatchingRule)
	}
	raw, err := json.Marshal(mr)
	if err != nil {
		return nil, err
	}
	return json.Marshal(indexerRuleJSON{
		IndexerRuleKind: r.IndexerRuleKind,
		MatchingRule:    raw,
		ID:              r.ID,
		Name:            r.Name,
	})
}

func (r *IndexerRule) UnmarshalJSON(data []byte) error {
	var outer indexerRuleJSON
	if err := json.Unmarshal(data, &outer); err != nil {
		return fmt.Errorf("decode rule: %w", err)
	}
	var mr matchingRuleJSON
	if err := json.Unmarshal(outer.MatchingRule, &mr); err != nil {
		return fmt.Errorf("decode matching rule: %w", err)
	}
	r.IndexerRuleKind = outer.IndexerRuleKind
	r.ID = outer.ID
	r.Name = outer.Name
	switch mr.Rule {
	case matchingRuleTagActionAny:
		r.MatchingRule = ActionAnyRule{AffectedAccountID: mr.AffectedAccountID, Status: mr.Status}
	case matchingRuleTagActionFunctionCall:
		r.MatchingRule = ActionFunctionCallRule{AffectedAccountID: mr.AffectedAccountID, Status: mr.Status, Function: mr.Function}
	case matchingRuleTagEvent:
		r.MatchingRule = EventRule{ContractAccountID: mr.ContractAccountID, Event: mr.Event, Standard: mr.Standard, Version: mr.Version}
	default:
		return fmt.Errorf("decode matching rule: unknown discriminator %q", mr.Rule)
	}
	return nil
}

// Identity renders the rule's id and name for log and error messages.
func (r *IndexerRule) Identity() string {
	id := "-"
	if r.ID != nil {
		id = fmt.Sprintf("%d", *r.ID)
	}
	name := "-"
	if r.Name != nil {
		name = *r.Name
	}
	return fmt.Sprintf("rule id=%s name=%s", id, name)
}

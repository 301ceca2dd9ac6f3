package core

// rule_match.go – the engine's output type. A match copies the source
// rule's identity by value, carries block and receipt provenance, and
// serializes to a borsh binary form (queue payload) and a camelCase JSON
// form (debug and key-value storage). The borsh variant tags and field
// order are wire-stable: new payload variants may be appended, existing
// tags must not be renumbered.

import (
	"encoding/json"
	"fmt"

	"github.com/near/borsh-go"
)

// ChainID selects the network a match was produced on.
type ChainID uint8

const (
	ChainIDMainnet ChainID = iota
	ChainIDTestnet
)

func (c ChainID) String() string {
	if c == ChainIDTestnet {
		return "testnet"
	}
	return "mainnet"
}

func (c ChainID) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ChainID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "mainnet":
		*c = ChainIDMainnet
	case "testnet":
		*c = ChainIDTestnet
	default:
		return fmt.Errorf("decode chain id: unknown value %q", s)
	}
	return nil
}

// IndexerRuleMatch is one receipt matched by one rule in one block.
type IndexerRuleMatch struct {
	ChainID         ChainID                 `json:"chainId"`
	IndexerRuleID   *uint32                 `json:"indexerRuleId"`
	IndexerRuleName *string                 `json:"indexerRuleName"`
	Payload         IndexerRuleMatchPayload `json:"payload"`
	BlockHeight     uint64                  `json:"blockHeight"`
}

// ActionsPayload carries provenance for action matches. TransactionHash is
// reserved for a future enrichment pass and is always nil today.
type ActionsPayload struct {
	BlockHash       string  `json:"blockHash"`
	ReceiptID       string  `json:"receiptId"`
	TransactionHash *string `json:"transactionHash"`
}

// EventsPayload extends the action provenance with the winning event log's
// fields; Data holds the event data serialized to its text form.
type EventsPayload struct {
	BlockHash       string  `json:"blockHash"`
	ReceiptID       string  `json:"receiptId"`
	TransactionHash *string `json:"transactionHash"`
	Event           string  `json:"event"`
	Standard        string  `json:"standard"`
	Version         string  `json:"version"`
	Data            *string `json:"data"`
}

// StateChangesPayload is reserved: declared for wire stability, never
// produced by the current engine.
type StateChangesPayload struct {
	BlockHash       string  `json:"blockHash"`
	ReceiptID       *string `json:"receiptId"`
	TransactionHash *string `json:"transactionHash"`
}

// IndexerRuleMatchPayload is the tagged payload union. The borsh enum tag
// selects the populated variant field (Actions=0, Events=1, StateChanges=2).
type IndexerRuleMatchPayload struct {
	Enum         borsh.Enum `borsh_enum:"true"`
	Actions      ActionsPayload
	Events       EventsPayload
	StateChanges StateChangesPayload
}

const (
	payloadTagActions borsh.Enum = iota
	payloadTagEvents
	payloadTagStateChanges
)

// NewActionsPayload builds the payload for action-rule matches.
func NewActionsPayload(blockHash, receiptID string, transactionHash *string) IndexerRuleMatchPayload {
	return IndexerRuleMatchPayload{
		Enum:    payloadTagActions,
		Actions: ActionsPayload{BlockHash: blockHash, ReceiptID: receiptID, TransactionHash: transactionHash},
	}
}

// NewEventsPayload builds the payload for event-rule matches.
func NewEventsPayload(blockHash, receiptID string, transactionHash *string, event, standard, version string, data *string) IndexerRuleMatchPayload {
	return IndexerRuleMatchPayload{
		Enum: payloadTagEvents,
		Events: EventsPayload{
			BlockHash:       blockHash,
			ReceiptID:       receiptID,
			TransactionHash: transactionHash,
			Event:           event,
			Standard:        standard,
			Version:         version,
			Data:            data,
		},
	}
}

// Variant returns the stable payload discriminator.
func (p *IndexerRuleMatchPayload) Variant() string {
	switch p.Enum {
	case payloadTagEvents:
		return "Events"
	case payloadTagStateChanges:
		return "StateChanges"
	default:
		return "Actions"
	}
}

// BlockHash returns the payload's block hash; every variant carries one.
func (p *IndexerRuleMatchPayload) BlockHash() string {
	switch p.Enum {
	case payloadTagEvents:
		return p.Events.BlockHash
	case payloadTagStateChanges:
		return p.StateChanges.BlockHash
	default:
		return p.Actions.BlockHash
	}
}

// ReceiptID returns the payload's receipt id, or nil for state-change
// payloads without one.
func (p *IndexerRuleMatchPayload) ReceiptID() *string {
	switch p.Enum {
	case payloadTagEvents:
		return &p.Events.ReceiptID
	case payloadTagStateChanges:
		return p.StateChanges.ReceiptID
	default:
		return &p.Actions.ReceiptID
	}
}

// TransactionHash returns the payload's transaction hash when present.
func (p *IndexerRuleMatchPayload) TransactionHash() *string {
	switch p.Enum {
	case payloadTagEvents:
		return p.Events.TransactionHash
	case payloadTagStateChanges:
		return p.StateChanges.TransactionHash
	default:
		return p.Actions.TransactionHash
	}
}

func (p IndexerRuleMatchPayload) MarshalJSON() ([]byte, error) {
	switch p.Enum {
	case payloadTagActions:
		return json.Marshal(map[string]ActionsPayload{"Actions": p.Actions})
	case payloadTagEvents:
		return json.Marshal(map[string]EventsPayload{"Events": p.Events})
	case payloadTagStateChanges:
		return json.Marshal(map[string]StateChangesPayload{"StateChanges": p.StateChanges})
	}
	return nil, fmt.Errorf("encode payload: unknown variant tag %d", p.Enum)
}

func (p *IndexerRuleMatchPayload) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if len(obj) != 1 {
		return fmt.Errorf("decode payload: expected one variant key, got %d", len(obj))
	}
	for key, raw := range obj {
		switch key {
		case "Actions":
			p.Enum = payloadTagActions
			return json.Unmarshal(raw, &p.Actions)
		case "Events":
			p.Enum = payloadTagEvents
			return json.Unmarshal(raw, &p.Events)
		case "StateChanges":
			p.Enum = payloadTagStateChanges
			return json.Unmarshal(raw, &p.StateChanges)
		default:
			return fmt.Errorf("decode payload: unknown discriminator %q", key)
		}
	}
	return nil
}

// ToBorsh serializes the match to its binary queue form.
func (m *IndexerRuleMatch) ToBorsh() ([]byte, error) {
	return borsh.Serialize(*m)
}

// IndexerRuleMatchFromBorsh deserializes a match from its binary queue form.
func IndexerRuleMatchFromBorsh(data []byte) (IndexerRuleMatch, error) {
	var m IndexerRuleMatch
	if err := borsh.Deserialize(&m, data); err != nil {
		return IndexerRuleMatch{}, fmt.Errorf("decode match: %w", err)
	}
	return m, nil
}

const (
	explorerMainnetHost = "https://explorer.near.org"
	explorerTestnetHost = "https://explorer.testnet.near.org"
)

// ExplorerLink derives a human-facing explorer URL from the chain id and
// the most specific provenance the payload carries.
func (m *IndexerRuleMatch) ExplorerLink() string {
	host := explorerMainnetHost
	if m.ChainID == ChainIDTestnet {
		host = explorerTestnetHost
	}
	if tx := m.Payload.TransactionHash(); tx != nil {
		if receiptID := m.Payload.ReceiptID(); receiptID != nil {
			return fmt.Sprintf("%s/transactions/%s#%s", host, *tx, *receiptID)
		}
		return fmt.Sprintf("%s/transactions/%s", host, *tx)
	}
	return fmt.Sprintf("%s/block/%s", host, m.Payload.BlockHash())
}

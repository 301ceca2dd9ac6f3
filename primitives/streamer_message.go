package primitives

// streamer_message.go – data model for one streaming unit produced by the
// lake: a block header plus every shard's receipt execution outcomes. The
// JSON tags follow the upstream lake wire format (snake_case keys, enum
// variants encoded as single-key objects), so a raw lake object decodes
// directly into these types.

import (
	"encoding/json"
	"fmt"
)

// StreamerMessage is one block worth of execution data.
type StreamerMessage struct {
	Block  Block          `json:"block"`
	Shards []IndexerShard `json:"shards"`
}

// Block carries the header and the chunk headers included in the block.
type Block struct {
	Header BlockHeaderView   `json:"header"`
	Chunks []ChunkHeaderView `json:"chunks"`
}

type BlockHeaderView struct {
	Height    uint64 `json:"height"`
	Hash      string `json:"hash"`
	PrevHash  string `json:"prev_hash"`
	Timestamp uint64 `json:"timestamp"`
}

type ChunkHeaderView struct {
	ChunkHash      string `json:"chunk_hash"`
	ShardID        uint64 `json:"shard_id"`
	HeightCreated  uint64 `json:"height_created"`
	HeightIncluded uint64 `json:"height_included"`
}

// IndexerShard is one partition of a block's execution.
type IndexerShard struct {
	ShardID                  uint64                               `json:"shard_id"`
	ReceiptExecutionOutcomes []IndexerExecutionOutcomeWithReceipt `json:"receipt_execution_outcomes"`
}

// IndexerExecutionOutcomeWithReceipt pairs an executed receipt with its
// execution outcome.
type IndexerExecutionOutcomeWithReceipt struct {
	ExecutionOutcome ExecutionOutcomeWithIDView `json:"execution_outcome"`
	Receipt          ReceiptView                `json:"receipt"`
}

type ExecutionOutcomeWithIDView struct {
	ID      string               `json:"id"`
	Outcome ExecutionOutcomeView `json:"outcome"`
}

type ExecutionOutcomeView struct {
	Logs        []string            `json:"logs"`
	ReceiptIDs  []string            `json:"receipt_ids"`
	GasBurnt    uint64              `json:"gas_burnt"`
	TokensBurnt string              `json:"tokens_burnt"`
	ExecutorID  string              `json:"executor_id"`
	Status      ExecutionStatusView `json:"status"`
}

// ReceiptView is a unit of cross-contract work addressed to ReceiverID.
type ReceiptView struct {
	PredecessorID string          `json:"predecessor_id"`
	ReceiverID    string          `json:"receiver_id"`
	ReceiptID     string          `json:"receipt_id"`
	Receipt       ReceiptEnumView `json:"receipt"`
}

// ReceiptEnumView holds exactly one of the receipt variants. The wire form
// is a single-key object, which plain struct decoding handles as-is.
type ReceiptEnumView struct {
	Action *ActionReceiptView `json:"Action,omitempty"`
	Data   *DataReceiptView   `json:"Data,omitempty"`
}

type ActionReceiptView struct {
	SignerID        string       `json:"signer_id"`
	SignerPublicKey string       `json:"signer_public_key"`
	GasPrice        string       `json:"gas_price"`
	Actions         []ActionView `json:"actions"`
}

type DataReceiptView struct {
	DataID string  `json:"data_id"`
	Data   *string `json:"data"`
}

// Actions returns the receipt's action list, or nil for data receipts.
func (r *ReceiptView) Actions() []ActionView {
	if r.Receipt.Action == nil {
		return nil
	}
	return r.Receipt.Action.Actions
}

// ActionKind names a single operation within a receipt.
type ActionKind string

const (
	ActionKindCreateAccount  ActionKind = "CreateAccount"
	ActionKindDeployContract ActionKind = "DeployContract"
	ActionKindFunctionCall   ActionKind = "FunctionCall"
	ActionKindTransfer       ActionKind = "Transfer"
	ActionKindStake          ActionKind = "Stake"
	ActionKindAddKey         ActionKind = "AddKey"
	ActionKindDeleteKey      ActionKind = "DeleteKey"
	ActionKindDeleteAccount  ActionKind = "DeleteAccount"
	ActionKindDelegate       ActionKind = "Delegate"
)

// ActionView is one action of an action receipt. On the wire an action is
// either a bare string ("CreateAccount") or a single-key object whose key is
// the kind and whose value is the kind-specific payload.
type ActionView struct {
	Kind         ActionKind
	FunctionCall *FunctionCallActionView

	raw json.RawMessage
}

type FunctionCallActionView struct {
	MethodName string `json:"method_name"`
	Args       string `json:"args"`
	Gas        uint64 `json:"gas"`
	Deposit    string `json:"deposit"`
}

func (a *ActionView) UnmarshalJSON(data []byte) error {
	a.raw = append(a.raw[:0], data...)

	var kind string
	if err := json.Unmarshal(data, &kind); err == nil {
		a.Kind = ActionKind(kind)
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode action: %w", err)
	}
	if len(obj) != 1 {
		return fmt.Errorf("decode action: expected one variant key, got %d", len(obj))
	}
	for key, payload := range obj {
		a.Kind = ActionKind(key)
		if a.Kind == ActionKindFunctionCall {
			fc := &FunctionCallActionView{}
			if err := json.Unmarshal(payload, fc); err != nil {
				return fmt.Errorf("decode FunctionCall action: %w", err)
			}
			a.FunctionCall = fc
		}
	}
	return nil
}

// MarshalJSON re-emits the original wire form so cached block messages stay
// byte-compatible with what the lake produced.
func (a ActionView) MarshalJSON() ([]byte, error) {
	if a.raw != nil {
		return a.raw, nil
	}
	if a.FunctionCall != nil {
		return json.Marshal(map[string]*FunctionCallActionView{string(ActionKindFunctionCall): a.FunctionCall})
	}
	return json.Marshal(string(a.Kind))
}

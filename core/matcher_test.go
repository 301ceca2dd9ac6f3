package core

import (
	"testing"

	"queryapi/primitives"
)

func functionCallAction(method string) primitives.ActionView {
	return primitives.ActionView{
		Kind:         primitives.ActionKindFunctionCall,
		FunctionCall: &primitives.FunctionCallActionView{MethodName: method, Args: "e30=", Gas: 30000000000000, Deposit: "0"},
	}
}

func outcomeWith(receiver string, status primitives.ExecutionStatusKind, actions []primitives.ActionView, logs []string) primitives.IndexerExecutionOutcomeWithReceipt {
	return primitives.IndexerExecutionOutcomeWithReceipt{
		ExecutionOutcome: primitives.ExecutionOutcomeWithIDView{
			ID: "receipt-id",
			Outcome: primitives.ExecutionOutcomeView{
				Logs:       logs,
				ExecutorID: receiver,
				Status:     primitives.ExecutionStatusView{Kind: status},
			},
		},
		Receipt: primitives.ReceiptView{
			PredecessorID: "caller.near",
			ReceiverID:    receiver,
			ReceiptID:     "receipt-id",
			Receipt: primitives.ReceiptEnumView{
				Action: &primitives.ActionReceiptView{SignerID: "caller.near", Actions: actions},
			},
		},
	}
}

// TestMatchesActionAnyStatus verifies the SUCCESS and FAIL filters and
// that ANY accepts failures.
func TestMatchesActionAnyStatus(t *testing.T) {
	success := outcomeWith("app.nearcrowd.near", primitives.ExecutionStatusSuccessValue, []primitives.ActionView{functionCallAction("mint")}, nil)
	failed := outcomeWith("app.nearcrowd.near", primitives.ExecutionStatusFailure, []primitives.ActionView{functionCallAction("mint")}, nil)

	if !Matches(ActionAnyRule{AffectedAccountID: "*", Status: StatusSuccess}, &success) {
		t.Fatalf("success outcome should pass SUCCESS filter")
	}
	if Matches(ActionAnyRule{AffectedAccountID: "*", Status: StatusSuccess}, &failed) {
		t.Fatalf("failed outcome should not pass SUCCESS filter")
	}
	if !Matches(ActionAnyRule{AffectedAccountID: "*", Status: StatusFail}, &failed) {
		t.Fatalf("failed outcome should pass FAIL filter")
	}
	if Matches(ActionAnyRule{AffectedAccountID: "*", Status: StatusFail}, &success) {
		t.Fatalf("success outcome should not pass FAIL filter")
	}
	if !Matches(ActionAnyRule{AffectedAccountID: "*", Status: StatusAny}, &failed) {
		t.Fatalf("ANY filter should accept failures")
	}
}

// TestMatchesActionAnyAccount verifies the receiver-id account touch and
// that a receipt without actions never qualifies.
func TestMatchesActionAnyAccount(t *testing.T) {
	outcome := outcomeWith("app.nearcrowd.near", primitives.ExecutionStatusSuccessValue, []primitives.ActionView{{Kind: primitives.ActionKindTransfer}}, nil)

	if !Matches(ActionAnyRule{AffectedAccountID: "*.nearcrowd.near", Status: StatusSuccess}, &outcome) {
		t.Fatalf("wildcard account should match receiver")
	}
	if Matches(ActionAnyRule{AffectedAccountID: "*.nearcrow.near", Status: StatusSuccess}, &outcome) {
		t.Fatalf("misspelled account must not match")
	}
	if Matches(ActionAnyRule{AffectedAccountID: "", Status: StatusSuccess}, &outcome) {
		t.Fatalf("empty account pattern matches nothing")
	}

	empty := outcomeWith("app.nearcrowd.near", primitives.ExecutionStatusSuccessValue, nil, nil)
	if Matches(ActionAnyRule{AffectedAccountID: "*", Status: StatusSuccess}, &empty) {
		t.Fatalf("receipt without actions must not qualify")
	}
}

// TestMatchesActionFunctionCall verifies the method-name filter on top of
// the account and status checks.
func TestMatchesActionFunctionCall(t *testing.T) {
	outcome := outcomeWith("app.nearcrowd.near", primitives.ExecutionStatusSuccessValue,
		[]primitives.ActionView{{Kind: primitives.ActionKindTransfer}, functionCallAction("approve_solution")}, nil)

	rule := ActionFunctionCallRule{AffectedAccountID: "app.nearcrowd.near", Status: StatusSuccess, Function: "approve_solution"}
	if !Matches(rule, &outcome) {
		t.Fatalf("function call should match listed method")
	}

	rule.Function = "mint, approve_solution"
	if !Matches(rule, &outcome) {
		t.Fatalf("method list should OR-combine")
	}

	rule.Function = "mint"
	if Matches(rule, &outcome) {
		t.Fatalf("unlisted method must not match")
	}

	noCalls := outcomeWith("app.nearcrowd.near", primitives.ExecutionStatusSuccessValue, []primitives.ActionView{{Kind: primitives.ActionKindTransfer}}, nil)
	rule.Function = "approve_solution"
	if Matches(rule, &noCalls) {
		t.Fatalf("receipt without function calls must not match")
	}
}

// TestMatchesEvent verifies that all three globs must hold on the same
// parsed event, and that unparseable logs are skipped silently.
func TestMatchesEvent(t *testing.T) {
	logs := []string{
		"plain progress line",
		`EVENT_JSON:{"standard":"nep141","version":"1.0.0","event":"ft_transfer"}`,
		`EVENT_JSON:{"standard":"nep171","version":"1.1.0","event":"transfer"}`,
	}
	outcome := outcomeWith("marketplace.near", primitives.ExecutionStatusSuccessValue, []primitives.ActionView{functionCallAction("nft_transfer")}, logs)

	rule := EventRule{ContractAccountID: "*", Event: "transfer", Standard: "nep171", Version: "1.*.*"}
	if !Matches(rule, &outcome) {
		t.Fatalf("expected event rule to match the nep171 log")
	}

	// All three globs must hold on one event: the nep141 log has the event
	// name but not the standard, the nep171 log has the standard but not
	// the event name.
	cross := EventRule{ContractAccountID: "*", Event: "ft_transfer", Standard: "nep171", Version: "*"}
	if Matches(cross, &outcome) {
		t.Fatalf("globs must not be satisfied across different logs")
	}

	rule.ContractAccountID = "other.near"
	if Matches(rule, &outcome) {
		t.Fatalf("contract pattern must gate event matches")
	}

	bare := outcomeWith("marketplace.near", primitives.ExecutionStatusSuccessValue, nil, []string{"no events here"})
	if Matches(EventRule{ContractAccountID: "*", Event: "*", Standard: "*", Version: "*"}, &bare) {
		t.Fatalf("outcome without event logs must not match")
	}
}

// TestFirstMatchingEventOrder verifies the first matching log in log order
// wins, deterministically.
func TestFirstMatchingEventOrder(t *testing.T) {
	logs := []string{
		`EVENT_JSON:{"standard":"nep171","version":"1.0.0","event":"transfer","data":"first"}`,
		`EVENT_JSON:{"standard":"nep171","version":"1.2.0","event":"transfer","data":"second"}`,
	}
	rule := EventRule{ContractAccountID: "*", Event: "transfer", Standard: "nep171", Version: "1.*.*"}
	event := firstMatchingEvent(&rule, logs)
	if event == nil {
		t.Fatalf("expected a matching event")
	}
	if event.Version != "1.0.0" || string(event.Data) != `"first"` {
		t.Fatalf("expected the first log to win, got %+v", event)
	}
}

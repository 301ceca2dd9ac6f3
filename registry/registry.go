// Package registry holds the set of registered indexer functions: a
// nested account → function-name map guarded by one mutex. The
// coordinator snapshots it per block and is its only writer (flipping
// the provisioned flag).
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"queryapi/core"
	"queryapi/rpcclient"
)

// ListMethodName is the view method the registry contract exposes.
const ListMethodName = "list_indexer_functions"

// IndexerFunction is one registered function and the rule that feeds it.
type IndexerFunction struct {
	AccountID        string           `json:"account_id"`
	FunctionName     string           `json:"function_name"`
	Code             string           `json:"code"`
	StartBlockHeight *uint64          `json:"start_block_height"`
	Schema           *string          `json:"schema"`
	Provisioned      bool             `json:"provisioned"`
	IndexerRule      core.IndexerRule `json:"indexer_rule"`
}

// FullName returns the function's fully-qualified name, used to derive its
// stream and storage keys.
func (f *IndexerFunction) FullName() string {
	return f.AccountID + "/" + f.FunctionName
}

// Registry is the mutex-guarded function map.
type Registry struct {
	mu        sync.Mutex
	functions map[string]map[string]*IndexerFunction
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{functions: make(map[string]map[string]*IndexerFunction)}
}

// registryEntryJSON is the per-function object in the registry contract's
// JSON payload.
type registryEntryJSON struct {
	Code             string           `json:"code"`
	StartBlockHeight *uint64          `json:"start_block_height"`
	Schema           *string          `json:"schema"`
	Filter           core.IndexerRule `json:"filter"`
}

// BuildFromJSON replaces the registry contents with the account →
// function-name → function payload produced by the registry contract.
func (r *Registry) BuildFromJSON(raw []byte) error {
	var parsed map[string]map[string]registryEntryJSON
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parse registry payload: %w", err)
	}
	functions := make(map[string]map[string]*IndexerFunction, len(parsed))
	for accountID, accountFunctions := range parsed {
		functions[accountID] = make(map[string]*IndexerFunction, len(accountFunctions))
		for functionName, entry := range accountFunctions {
			functions[accountID][functionName] = &IndexerFunction{
				AccountID:        accountID,
				FunctionName:     functionName,
				Code:             entry.Code,
				StartBlockHeight: entry.StartBlockHeight,
				Schema:           entry.Schema,
				IndexerRule:      entry.Filter,
			}
		}
	}
	r.mu.Lock()
	r.functions = functions
	r.mu.Unlock()
	return nil
}

// FetchFromContract loads the registry from the on-chain registry contract.
func (r *Registry) FetchFromContract(ctx context.Context, rpc *rpcclient.Client, contractID string) error {
	raw, err := rpc.CallFunction(ctx, contractID, ListMethodName, map[string]any{})
	if err != nil {
		return fmt.Errorf("fetch registry from %s: %w", contractID, err)
	}
	return r.BuildFromJSON(raw)
}

// Insert adds or replaces one function.
func (r *Registry) Insert(fn *IndexerFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	accountFunctions, ok := r.functions[fn.AccountID]
	if !ok {
		accountFunctions = make(map[string]*IndexerFunction)
		r.functions[fn.AccountID] = accountFunctions
	}
	accountFunctions[fn.FunctionName] = fn
}

// Get returns the function registered under account and name, or nil.
func (r *Registry) Get(accountID, functionName string) *IndexerFunction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.functions[accountID][functionName]
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, accountFunctions := range r.functions {
		n += len(accountFunctions)
	}
	return n
}

// Snapshot returns every registered function in a stable order. The
// returned pointers share the registered entries; callers treat them as
// read-only and go through SetProvisioned for the one mutable field.
func (r *Registry) Snapshot() []*IndexerFunction {
	r.mu.Lock()
	defer r.mu.Unlock()
	functions := make([]*IndexerFunction, 0, len(r.functions))
	for _, accountFunctions := range r.functions {
		for _, fn := range accountFunctions {
			functions = append(functions, fn)
		}
	}
	sort.Slice(functions, func(i, j int) bool {
		return functions[i].FullName() < functions[j].FullName()
	})
	return functions
}

// SetProvisioned flips the provisioned flag of one function. A missing
// function is logged and reported; the caller continues with other rules.
func (r *Registry) SetProvisioned(accountID, functionName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	accountFunctions, ok := r.functions[accountID]
	if !ok {
		logrus.Errorf("cannot set provisioned: account %s not found in registry", accountID)
		return fmt.Errorf("account %s not found in registry", accountID)
	}
	fn, ok := accountFunctions[functionName]
	if !ok {
		names := make([]string, 0, len(accountFunctions))
		for name := range accountFunctions {
			names = append(names, name)
		}
		sort.Strings(names)
		logrus.Errorf("cannot set provisioned: function %s not found for account %s (registered: %v)", functionName, accountID, names)
		return fmt.Errorf("function %s not found for account %s", functionName, accountID)
	}
	fn.Provisioned = true
	return nil
}

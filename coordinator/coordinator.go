// Package coordinator drives the per-block pipeline: it consumes streamer
// messages one block deep, fans each block across every registered
// indexer function under a bounded concurrency budget, and feeds the
// matches into the real-time cache and stream store.
package coordinator

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"queryapi/core"
	"queryapi/metrics"
	"queryapi/pkg/utils"
	"queryapi/primitives"
	"queryapi/registry"
	"queryapi/storage"
)

// DefaultConcurrency bounds the number of rule reductions in flight for
// one block.
const DefaultConcurrency = 10

// streamerMessageTTL bounds how long a cached block message stays
// readable by real-time runners.
const streamerMessageTTL = 60 * time.Second

// Store is the slice of the storage client the coordinator writes to.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SAdd(ctx context.Context, setKey, member string) error
	XAdd(ctx context.Context, stream string, blockHeight uint64) error
	UpdateLastIndexedBlock(ctx context.Context, blockHeight uint64) error
}

// Coordinator fans blocks across rules and publishes the results.
type Coordinator struct {
	ChainID     core.ChainID
	Registry    *registry.Registry
	Store       Store
	Concurrency int
}

// New returns a coordinator with the default concurrency budget.
func New(chainID core.ChainID, reg *registry.Registry, store Store) *Coordinator {
	return &Coordinator{
		ChainID:     chainID,
		Registry:    reg,
		Store:       store,
		Concurrency: DefaultConcurrency,
	}
}

// Run consumes messages until the channel closes or ctx is canceled.
// Blocks are processed strictly in arrival order, one at a time; a failed
// block is logged and the stream continues with the next one.
func (c *Coordinator) Run(ctx context.Context, messages <-chan *primitives.StreamerMessage) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			height, err := c.HandleStreamerMessage(ctx, msg)
			if err != nil {
				logrus.WithError(err).Errorf("failed to process block %d", msg.Block.Header.Height)
				continue
			}
			logrus.Debugf("processed block %d", height)
		}
	}
}

type functionWithMatches struct {
	fn      *registry.IndexerFunction
	matches []core.IndexerRuleMatch
	err     error
}

// HandleStreamerMessage processes one block: cache it, evaluate every
// registered rule against it, publish matches, and advance the high-water
// mark. Per-rule failures are logged and skipped; they never fail the
// block.
func (c *Coordinator) HandleStreamerMessage(ctx context.Context, msg *primitives.StreamerMessage) (uint64, error) {
	blockHeight := msg.Block.Header.Height
	functions := c.Registry.Snapshot()

	// Cache the block for real-time processing before any rule runs, so a
	// runner woken by a stream entry always finds its block.
	body, err := utils.SerializeToCamelCaseJSON(msg)
	if err != nil {
		return 0, utils.Wrap(err, "serialize streamer message")
	}
	if err := c.Store.Set(ctx, storage.StreamerMessageKey(blockHeight), body, streamerMessageTTL); err != nil {
		return 0, utils.Wrap(err, "cache streamer message")
	}

	results := c.reduceAll(ctx, functions, msg)

	for i := range results {
		res := &results[i]
		if res.err != nil {
			logrus.WithError(res.err).Errorf("rule evaluation failed for %s at block %d", res.fn.FullName(), blockHeight)
			continue
		}
		if len(res.matches) == 0 {
			continue
		}
		if err := c.publishMatches(ctx, res.fn, blockHeight, res.matches); err != nil {
			return 0, err
		}
	}

	if err := c.Store.UpdateLastIndexedBlock(ctx, blockHeight); err != nil {
		return 0, utils.Wrap(err, "update last indexed block")
	}

	metrics.BlockCount.Inc()
	metrics.LatestBlockHeight.Set(float64(blockHeight))
	return blockHeight, nil
}

// reduceAll evaluates every function's rule against the block, at most
// Concurrency reductions in flight.
func (c *Coordinator) reduceAll(ctx context.Context, functions []*registry.IndexerFunction, msg *primitives.StreamerMessage) []functionWithMatches {
	budget := c.Concurrency
	if budget <= 0 {
		budget = DefaultConcurrency
	}
	sem := make(chan struct{}, budget)
	results := make([]functionWithMatches, len(functions))

	var wg sync.WaitGroup
	for i, fn := range functions {
		wg.Add(1)
		go func(i int, fn *registry.IndexerFunction) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			matches, err := core.ReduceIndexerRuleMatches(ctx, &fn.IndexerRule, msg, c.ChainID)
			results[i] = functionWithMatches{fn: fn, matches: matches, err: err}
		}(i, fn)
	}
	wg.Wait()
	return results
}

// publishMatches registers the function's stream and appends one stream
// entry per match.
func (c *Coordinator) publishMatches(ctx context.Context, fn *registry.IndexerFunction, blockHeight uint64, matches []core.IndexerRuleMatch) error {
	logrus.Debugf("matched filter %s for function %s", fn.IndexerRule.Identity(), fn.FullName())

	if !fn.Provisioned {
		// Best effort; a registry drift is logged inside SetProvisioned.
		_ = c.Registry.SetProvisioned(fn.AccountID, fn.FunctionName)
	}

	definition, err := json.Marshal(fn)
	if err != nil {
		return utils.Wrap(err, "serialize indexer function")
	}

	streamKey := storage.RealTimeStreamKey(fn.FullName())
	for range matches {
		if err := c.Store.SAdd(ctx, storage.StreamsSetKey, streamKey); err != nil {
			return err
		}
		if err := c.Store.Set(ctx, storage.RealTimeStorageKey(fn.FullName()), string(definition), 0); err != nil {
			return err
		}
		if err := c.Store.XAdd(ctx, streamKey, blockHeight); err != nil {
			return err
		}
	}
	return nil
}

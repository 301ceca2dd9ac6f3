// Package lake streams block messages out of the chain's lake: an S3
// bucket holding one prefix per block with a block.json object and one
// shard_N.json object per chunk. The streamer tails the bucket from a
// start height and delivers decoded messages on a bounded channel, in
// height order.
package lake

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"queryapi/primitives"
)

// Bucket names per chain.
const (
	MainnetBucket = "near-lake-data-mainnet"
	TestnetBucket = "near-lake-data-testnet"
)

const (
	defaultPageSize     = 100
	defaultPollInterval = 2 * time.Second
)

// S3API is the slice of the S3 client the streamer needs.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config selects the bucket and the first block to stream.
type Config struct {
	Bucket           string
	StartBlockHeight uint64
	// PollInterval is how long to wait when the tip has been reached.
	// Zero means the default.
	PollInterval time.Duration
}

// Streamer tails the lake bucket.
type Streamer struct {
	s3  S3API
	cfg Config
}

// NewStreamer returns a streamer over the given S3 client.
func NewStreamer(client S3API, cfg Config) *Streamer {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &Streamer{s3: client, cfg: cfg}
}

// Run streams block messages to out until ctx is canceled or a fetch
// fails. It does not close out.
func (s *Streamer) Run(ctx context.Context, out chan<- *primitives.StreamerMessage) error {
	logrus.Infof("streaming %s from block %d", s.cfg.Bucket, s.cfg.StartBlockHeight)
	next := s.cfg.StartBlockHeight
	for {
		heights, err := s.listBlockHeights(ctx, next)
		if err != nil {
			return err
		}
		if len(heights) == 0 {
			select {
			case <-time.After(s.cfg.PollInterval):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		for _, height := range heights {
			msg, err := s.fetchStreamerMessage(ctx, height)
			if err != nil {
				return err
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		next = heights[len(heights)-1] + 1
	}
}

// listBlockHeights returns up to one page of block heights at or after
// from, in ascending order.
func (s *Streamer) listBlockHeights(ctx context.Context, from uint64) ([]uint64, error) {
	startAfter := ""
	if from > 0 {
		startAfter = blockPrefix(from - 1)
	}
	resp, err := s.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:     aws.String(s.cfg.Bucket),
		Delimiter:  aws.String("/"),
		MaxKeys:    aws.Int32(defaultPageSize),
		StartAfter: aws.String(startAfter),
	})
	if err != nil {
		return nil, fmt.Errorf("list %s after block %d: %w", s.cfg.Bucket, from, err)
	}
	heights := make([]uint64, 0, len(resp.CommonPrefixes))
	for _, prefix := range resp.CommonPrefixes {
		if prefix.Prefix == nil {
			continue
		}
		height, err := strconv.ParseUint(strings.TrimSuffix(*prefix.Prefix, "/"), 10, 64)
		if err != nil {
			// The bucket also carries non-block keys; skip them.
			continue
		}
		if height >= from {
			heights = append(heights, height)
		}
	}
	return heights, nil
}

// fetchStreamerMessage assembles one block message from the block object
// and its per-chunk shard objects.
func (s *Streamer) fetchStreamerMessage(ctx context.Context, height uint64) (*primitives.StreamerMessage, error) {
	var block primitives.Block
	if err := s.getJSON(ctx, blockPrefix(height)+"block.json", &block); err != nil {
		return nil, err
	}
	msg := &primitives.StreamerMessage{Block: block, Shards: make([]primitives.IndexerShard, 0, len(block.Chunks))}
	for i := range block.Chunks {
		var shard primitives.IndexerShard
		if err := s.getJSON(ctx, fmt.Sprintf("%sshard_%d.json", blockPrefix(height), i), &shard); err != nil {
			return nil, err
		}
		msg.Shards = append(msg.Shards, shard)
	}
	return msg, nil
}

func (s *Streamer) getJSON(ctx context.Context, key string, v any) error {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get s3://%s/%s: %w", s.cfg.Bucket, key, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read s3://%s/%s: %w", s.cfg.Bucket, key, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode s3://%s/%s: %w", s.cfg.Bucket, key, err)
	}
	return nil
}

// blockPrefix renders the zero-padded key prefix of one block.
func blockPrefix(height uint64) string {
	return fmt.Sprintf("%012d/", height)
}

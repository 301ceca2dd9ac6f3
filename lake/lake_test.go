package lake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"queryapi/primitives"
)

// fakeS3 serves a canned bucket layout: one prefix per block height plus
// the block and shard objects underneath.
type fakeS3 struct {
	objects  map[string]string
	prefixes []string
}

func (f *fakeS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for _, p := range f.prefixes {
		if params.StartAfter != nil && p <= *params.StartAfter {
			continue
		}
		prefix := p
		out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: &prefix})
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[*params.Key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", *params.Key)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func blockJSON(height uint64, chunks int) string {
	var chunkList []string
	for i := 0; i < chunks; i++ {
		chunkList = append(chunkList, fmt.Sprintf(`{"chunk_hash":"c%d","shard_id":%d,"height_created":%d,"height_included":%d}`, i, i, height, height))
	}
	return fmt.Sprintf(`{"header":{"height":%d,"hash":"hash-%d","prev_hash":"prev","timestamp":1},"chunks":[%s]}`,
		height, height, strings.Join(chunkList, ","))
}

func shardJSON(shardID uint64) string {
	return fmt.Sprintf(`{"shard_id":%d,"receipt_execution_outcomes":[]}`, shardID)
}

func testBucket(heights []uint64, chunks int) *fakeS3 {
	f := &fakeS3{objects: make(map[string]string)}
	for _, h := range heights {
		prefix := fmt.Sprintf("%012d/", h)
		f.prefixes = append(f.prefixes, prefix)
		f.objects[prefix+"block.json"] = blockJSON(h, chunks)
		for i := 0; i < chunks; i++ {
			f.objects[fmt.Sprintf("%sshard_%d.json", prefix, i)] = shardJSON(uint64(i))
		}
	}
	return f
}

// TestListBlockHeights verifies listing starts at the requested height and
// skips non-block prefixes.
func TestListBlockHeights(t *testing.T) {
	fake := testBucket([]uint64{100, 101, 103}, 1)
	fake.prefixes = append(fake.prefixes, "zz-not-a-block/")

	s := NewStreamer(fake, Config{Bucket: "bucket", StartBlockHeight: 101})
	heights, err := s.listBlockHeights(context.Background(), 101)
	if err != nil {
		t.Fatalf("listBlockHeights failed: %v", err)
	}
	if len(heights) != 2 || heights[0] != 101 || heights[1] != 103 {
		t.Fatalf("unexpected heights %v", heights)
	}
}

// TestFetchStreamerMessage verifies one shard object is fetched per chunk
// and the decoded message hangs together.
func TestFetchStreamerMessage(t *testing.T) {
	fake := testBucket([]uint64{93085141}, 4)
	s := NewStreamer(fake, Config{Bucket: "bucket", StartBlockHeight: 93085141})

	msg, err := s.fetchStreamerMessage(context.Background(), 93085141)
	if err != nil {
		t.Fatalf("fetchStreamerMessage failed: %v", err)
	}
	if msg.Block.Header.Height != 93085141 || msg.Block.Header.Hash != "hash-93085141" {
		t.Fatalf("unexpected header %+v", msg.Block.Header)
	}
	if len(msg.Shards) != 4 {
		t.Fatalf("expected 4 shards, got %d", len(msg.Shards))
	}
	for i, shard := range msg.Shards {
		if shard.ShardID != uint64(i) {
			t.Fatalf("shard %d out of order: %+v", i, shard)
		}
	}
}

// TestRunStreamsInOrder verifies messages arrive in height order and the
// streamer stops on context cancellation.
func TestRunStreamsInOrder(t *testing.T) {
	fake := testBucket([]uint64{100, 101, 102}, 1)
	s := NewStreamer(fake, Config{Bucket: "bucket", StartBlockHeight: 100})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan *primitives.StreamerMessage, 3)
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, out) }()

	var got []uint64
	for len(got) < 3 {
		msg := <-out
		got = append(got, msg.Block.Header.Height)
	}
	cancel()
	if err := <-errCh; err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	for i, h := range []uint64{100, 101, 102} {
		if got[i] != h {
			t.Fatalf("blocks out of order: %v", got)
		}
	}
}

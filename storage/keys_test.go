package storage

import "testing"

// TestKeyConventions pins the externally visible key derivations; other
// tooling reads these names out-of-process.
func TestKeyConventions(t *testing.T) {
	if got := StreamerMessageKey(93085141); got != "streamer:message:93085141" {
		t.Fatalf("unexpected streamer message key %q", got)
	}
	if got := RealTimeStreamKey("morgs.near/nft_listings"); got != "morgs.near/nft_listings:real_time:stream" {
		t.Fatalf("unexpected stream key %q", got)
	}
	if got := RealTimeStorageKey("morgs.near/nft_listings"); got != "morgs.near/nft_listings:real_time:storage" {
		t.Fatalf("unexpected storage key %q", got)
	}
	if StreamsSetKey != "streams" || LastIndexedBlockKey != "last_indexed_block" {
		t.Fatalf("well-known keys changed")
	}
}

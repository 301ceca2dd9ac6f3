package storage

import "fmt"

// Key conventions are externally visible: out-of-process consumers derive
// the same names to read cached blocks and drain per-function streams.
const (
	// StreamsSetKey lists every active real-time stream key.
	StreamsSetKey = "streams"
	// LastIndexedBlockKey holds the resume high-water mark.
	LastIndexedBlockKey = "last_indexed_block"
)

// StreamerMessageKey names the short-lived cache entry for one block's
// streamer message.
func StreamerMessageKey(blockHeight uint64) string {
	return fmt.Sprintf("streamer:message:%d", blockHeight)
}

// RealTimeStreamKey names the work stream of one indexer function,
// identified by its fully-qualified name.
func RealTimeStreamKey(fullName string) string {
	return fmt.Sprintf("%s:real_time:stream", fullName)
}

// RealTimeStorageKey names the cached definition of one indexer function.
func RealTimeStorageKey(fullName string) string {
	return fmt.Sprintf("%s:real_time:storage", fullName)
}

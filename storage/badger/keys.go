package badger

import (
	"fmt"

	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/storage"
)

// Key prefixes for different data types
const (
	chunkPrefix     = "chnk"
	authorityPrefix = "auth"
)

// makeChunkKey generates a key for a chunk within a partition.
// Format: prefix:partition:id
func makeChunkKey(partition core.DocumentType, id core.ID) []byte {
	// The ID is fixed-width BigEndian so lexicographic sort works correctly
	return append(makePartitionPrefix(partition), storage.MarshalID(id)...)
}

// makePartitionPrefix generates the key prefix shared by all chunks in a
// partition. Used for partition-scoped iteration.
func makePartitionPrefix(partition core.DocumentType) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkPrefix, partition))
}

// makeAuthorityKey generates a key for an authority record by author ID.
func makeAuthorityKey(authorID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", authorityPrefix, authorID))
}

// authorityKeyPrefix is the prefix shared by all authority records.
func authorityKeyPrefix() []byte {
	return []byte(authorityPrefix + ":")
}

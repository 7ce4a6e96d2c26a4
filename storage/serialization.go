package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/poiesic/ontosearch/core"
)

// MarshalChunk serializes a chunk to JSON bytes for storage.
func MarshalChunk(chunk *core.Chunk) ([]byte, error) {
	data, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalChunk deserializes a chunk from JSON bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	var chunk core.Chunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &chunk, nil
}

// MarshalAuthorityRecord serializes an authority record to JSON bytes.
func MarshalAuthorityRecord(record *core.AuthorityRecord) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalAuthorityRecord deserializes an authority record from JSON bytes.
func UnmarshalAuthorityRecord(data []byte) (*core.AuthorityRecord, error) {
	var record core.AuthorityRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalID serializes an ID to fixed-width BigEndian bytes so IDs sort
// lexicographically inside composite keys.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

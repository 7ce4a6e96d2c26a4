package badger

import (
	"context"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/storage"
)

// AuthorityRepository implements storage.AuthorityRepository for BadgerDB.
type AuthorityRepository struct {
	backend *Backend
}

var _ storage.AuthorityRepository = (*AuthorityRepository)(nil)

// NewAuthorityRepository creates a new AuthorityRepository over a shared backend.
func NewAuthorityRepository(backend *Backend) (storage.AuthorityRepository, error) {
	return &AuthorityRepository{backend: backend}, nil
}

// Close is a no-op; the shared backend owns the database handle.
func (r *AuthorityRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *AuthorityRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutAuthorities stores one or more authority records.
func (r *AuthorityRepository) PutAuthorities(ctx context.Context, records ...*core.AuthorityRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := core.ValidateAuthorityLevel(record.Level); err != nil {
				return err
			}
			key := makeAuthorityKey(record.AuthorID)
			value, err := storage.MarshalAuthorityRecord(record)
			if err != nil {
				return err
			}
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetAuthority retrieves the authority record for an author.
func (r *AuthorityRepository) GetAuthority(ctx context.Context, authorID string) (*core.AuthorityRecord, error) {
	var result *core.AuthorityRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeAuthorityKey(authorID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalAuthorityRecord(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// ListAuthorities retrieves all authority records, ordered by author ID.
func (r *AuthorityRepository) ListAuthorities(ctx context.Context) ([]*core.AuthorityRecord, error) {
	var results []*core.AuthorityRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = authorityKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.AuthorityRecord
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				record, unmarshalErr = storage.UnmarshalAuthorityRecord(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.AuthorityRecord) int {
		return strings.Compare(a.AuthorID, b.AuthorID)
	})
	return results, nil
}

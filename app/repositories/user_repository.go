package repositories

import (
	"context"
	"fmt"

	"askblog/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db  *badger.DB
	ids *idSequence
}

// NewBadgerUserRepository creates a new BadgerUserRepository. Only one
// should exist per database, and Close must run before the database closes.
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db, ids: newIDSequence(db, UserSeqKey)}
}

// Close releases the leased user ids.
func (r *BadgerUserRepository) Close() error {
	return r.ids.Release()
}

// Create stores a new user, failing with ErrDuplicate when the username is
// taken. A signup racing on the same name re-reads the index on retry.
func (r *BadgerUserRepository) Create(_ context.Context, user *models.User) error {
	indexKey := []byte(UsernameIndexKey + user.NormalizedUsername())

	id, err := r.ids.Next()
	if err != nil {
		return err
	}

	err = update(r.db, func(txn *badger.Txn) error {
		_, err := txn.Get(indexKey)
		if err == nil {
			return ErrDuplicate
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		stored := *user
		stored.ID = id
		data, err := marshalEntity(&stored)
		if err != nil {
			return err
		}
		if err := txn.Set(idKey(UserKeyPrefix, id), data); err != nil {
			return err
		}
		return txn.Set(indexKey, encodeInt(id))
	})
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(_ context.Context, id int) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by name, ignoring case
func (r *BadgerUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(UsernameIndexKey + models.NormalizeUsername(username)))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var id int
		err = item.Value(func(val []byte) error {
			id, err = decodeInt(val)
			return err
		})
		if err != nil {
			return err
		}
		return getEntity(txn, idKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves all users ordered by ID
func (r *BadgerUserRepository) List(_ context.Context) ([]*models.User, error) {
	users := []*models.User{}
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(UserKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var user models.User
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &user)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal user: %w", err)
			}
			users = append(users, &user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of registered users
func (r *BadgerUserRepository) Count(_ context.Context) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		n = countPrefix(txn, []byte(UserKeyPrefix))
		return nil
	})
	return n, err
}

package repositories

import (
	"context"
	"fmt"

	"askblog/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db  *badger.DB
	ids *idSequence
}

// NewBadgerPostRepository creates a new BadgerPostRepository. Only one
// should exist per database, and Close must run before the database closes.
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db, ids: newIDSequence(db, PostSeqKey)}
}

// Close releases the leased post ids.
func (r *BadgerPostRepository) Close() error {
	return r.ids.Release()
}

// Create creates a new post
func (r *BadgerPostRepository) Create(_ context.Context, post *models.Post) error {
	id, err := r.ids.Next()
	if err != nil {
		return err
	}
	post.ID = id

	return update(r.db, func(txn *badger.Txn) error {
		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(idKey(PostKeyPrefix, post.ID), data)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(_ context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves a page of posts, newest first
func (r *BadgerPostRepository) List(_ context.Context, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		return r.scan(txn, func(post *models.Post, n int) bool {
			if n < offset {
				return true
			}
			if n >= offset+limit {
				return false
			}
			posts = append(posts, post)
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// All retrieves every post, newest first
func (r *BadgerPostRepository) All(_ context.Context) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		return r.scan(txn, func(post *models.Post, _ int) bool {
			posts = append(posts, post)
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// scan walks posts from the highest id down, stopping when fn returns false.
func (r *BadgerPostRepository) scan(txn *badger.Txn, fn func(post *models.Post, n int) bool) error {
	prefix := []byte(PostKeyPrefix)
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	n := 0
	for seekLast(it, prefix); it.ValidForPrefix(prefix); it.Next() {
		var post models.Post
		err := it.Item().Value(func(val []byte) error {
			return unmarshalEntity(val, &post)
		})
		if err != nil {
			return fmt.Errorf("failed to unmarshal post: %w", err)
		}
		if !fn(&post, n) {
			return nil
		}
		n++
	}
	return nil
}

// Count returns the number of stored posts
func (r *BadgerPostRepository) Count(_ context.Context) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		n = countPrefix(txn, []byte(PostKeyPrefix))
		return nil
	})
	return n, err
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(_ context.Context, post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := idKey(PostKeyPrefix, post.ID)

		// Verify post exists
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete removes a post and its comments in one transaction.
func (r *BadgerPostRepository) Delete(_ context.Context, id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := idKey(PostKeyPrefix, id)

		// Verify post exists
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		for _, ck := range keysWithPrefix(txn, commentPostPrefix(id)) {
			commentID, err := commentIDFromKey(ck)
			if err != nil {
				return err
			}
			if err := txn.Delete(ck); err != nil {
				return err
			}
			if err := txn.Delete(idKey(CommentIndexKey, commentID)); err != nil {
				return err
			}
		}
		return txn.Delete(key)
	})
}

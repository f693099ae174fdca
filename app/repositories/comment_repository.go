package repositories

import (
	"context"
	"fmt"

	"askblog/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB.
// Comments live under their post's id so a post's thread is one prefix
// scan; idx:comment:<id> maps a comment id back to its post.
type BadgerCommentRepository struct {
	db  *badger.DB
	ids *idSequence
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository. Only one
// should exist per database, and Close must run before the database closes.
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db, ids: newIDSequence(db, CommentSeqKey)}
}

// Close releases the leased comment ids.
func (r *BadgerCommentRepository) Close() error {
	return r.ids.Release()
}

// Create stores a new comment. It fails with ErrNotFound when the post does
// not exist at commit time.
func (r *BadgerCommentRepository) Create(_ context.Context, comment *models.Comment) error {
	id, err := r.ids.Next()
	if err != nil {
		return err
	}

	err = update(r.db, func(txn *badger.Txn) error {
		_, err := txn.Get(idKey(PostKeyPrefix, comment.PostID))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		stored := *comment
		stored.ID = id
		data, err := marshalEntity(&stored)
		if err != nil {
			return err
		}
		if err := txn.Set(commentKey(comment.PostID, id), data); err != nil {
			return err
		}
		return txn.Set(idKey(CommentIndexKey, id), encodeInt(comment.PostID))
	})
	if err != nil {
		return err
	}
	comment.ID = id
	return nil
}

// lookupCommentKey resolves the storage key of a comment through the id index.
func lookupCommentKey(txn *badger.Txn, id int) ([]byte, error) {
	item, err := txn.Get(idKey(CommentIndexKey, id))
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var postID int
	err = item.Value(func(val []byte) error {
		postID, err = decodeInt(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return commentKey(postID, id), nil
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(_ context.Context, id int) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		key, err := lookupCommentKey(txn, id)
		if err != nil {
			return err
		}
		return getEntity(txn, key, &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves all comments for a post
func (r *BadgerCommentRepository) ListByPost(_ context.Context, postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scanComments(txn, commentPostPrefix(postID), func(c *models.Comment) {
			comments = append(comments, c)
		})
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// All retrieves every stored comment
func (r *BadgerCommentRepository) All(_ context.Context) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scanComments(txn, []byte(CommentKeyPrefix), func(c *models.Comment) {
			comments = append(comments, c)
		})
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func scanComments(txn *badger.Txn, prefix []byte, fn func(*models.Comment)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var comment models.Comment
		err := it.Item().Value(func(val []byte) error {
			return unmarshalEntity(val, &comment)
		})
		if err != nil {
			return fmt.Errorf("failed to unmarshal comment: %w", err)
		}
		fn(&comment)
	}
	return nil
}

// Update updates an existing comment. A comment cannot move to another post.
func (r *BadgerCommentRepository) Update(_ context.Context, comment *models.Comment) error {
	return update(r.db, func(txn *badger.Txn) error {
		key, err := lookupCommentKey(txn, comment.ID)
		if err != nil {
			return err
		}
		if string(key) != string(commentKey(comment.PostID, comment.ID)) {
			return ErrNotFound
		}

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(_ context.Context, id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		key, err := lookupCommentKey(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(idKey(CommentIndexKey, id))
	})
}

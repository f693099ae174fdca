package repositories

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"
	CommentIndexKey  = "idx:comment:"
	UserKeyPrefix    = "user:"
	UsernameIndexKey = "idx:username:"

	// Sequence keys for auto-incrementing IDs
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
	UserSeqKey    = "seq:user"
)

// Ids are zero padded so that lexical key order matches numeric order.
func idKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d", prefix, id))
}

func commentKey(postID, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d:%010d", CommentKeyPrefix, postID, id))
}

func commentPostPrefix(postID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", CommentKeyPrefix, postID))
}

// seqBandwidth is how many ids a Sequence leases per write.
const seqBandwidth = 32

// maxConflictRetries bounds how often update re-runs a transaction that
// lost a write conflict.
const maxConflictRetries = 10

// idSequence hands out ids for one entity type. Leasing goes through
// badger.Sequence so concurrent creates never write the same key.
type idSequence struct {
	db  *badger.DB
	key []byte

	mu  sync.Mutex
	seq *badger.Sequence
}

func newIDSequence(db *badger.DB, key string) *idSequence {
	return &idSequence{db: db, key: []byte(key)}
}

// Next returns the next id, starting at 1.
func (s *idSequence) Next() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq == nil {
		seq, err := s.db.GetSequence(s.key, seqBandwidth)
		if err != nil {
			return 0, fmt.Errorf("lease sequence %q: %w", s.key, err)
		}
		s.seq = seq
	}
	n, err := s.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("next in sequence %q: %w", s.key, err)
	}
	return int(n) + 1, nil
}

// Release hands unused leased ids back so a restart continues without a gap.
// It must run before the database is closed.
func (s *idSequence) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq == nil {
		return nil
	}
	err := s.seq.Release()
	s.seq = nil
	return err
}

// update runs fn in a read-write transaction, running it again when a
// concurrent transaction committed a key fn read. fn must not allocate ids.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func encodeInt(n int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	return b
}

func decodeInt(b []byte) (int, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("invalid index value of %d bytes", len(b))
	}
	return int(binary.BigEndian.Uint64(b)), nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// keysWithPrefix collects copies of every key under prefix.
func keysWithPrefix(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// commentIDFromKey extracts the comment id from a key built by commentKey.
func commentIDFromKey(key []byte) (int, error) {
	i := bytes.LastIndexByte(key, ':')
	if i < 0 {
		return 0, fmt.Errorf("malformed comment key %q", key)
	}
	id, err := strconv.Atoi(string(key[i+1:]))
	if err != nil {
		return 0, fmt.Errorf("malformed comment key %q: %w", key, err)
	}
	return id, nil
}

// getEntity loads the JSON value stored under key into entity.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// countPrefix counts keys under prefix without fetching values.
func countPrefix(txn *badger.Txn, prefix []byte) int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	n := 0
	for it.Rewind(); it.Valid(); it.Next() {
		n++
	}
	return n
}

// seekLast positions a reverse iterator on the last key under prefix.
func seekLast(it *badger.Iterator, prefix []byte) {
	it.Seek(append(append([]byte{}, prefix...), 0xff))
}

package manage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"askblog/app/config"
	"askblog/app/repositories"
	"askblog/app/repositories/sqlite"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// store is an open storage backend with its repositories.
type store struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	users    repositories.UserRepository

	// Exactly one of these is set, depending on the configured driver.
	badgerDB *badger.DB
	sqliteDB *sqlite.Store

	// release returns leased badger ids before the database closes.
	release []io.Closer
}

func openStore(cfg *config.Config, logger *zap.Logger) (*store, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &store{posts: db.Posts(), comments: db.Comments(), users: db.Users(), sqliteDB: db}, nil
	case config.StorageBadger:
		if err := os.MkdirAll(cfg.BadgerPath, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		db, err := repositories.OpenBadger(cfg.BadgerPath, logger)
		if err != nil {
			return nil, err
		}
		posts := repositories.NewBadgerPostRepository(db)
		comments := repositories.NewBadgerCommentRepository(db)
		users := repositories.NewBadgerUserRepository(db)
		return &store{
			posts:    posts,
			comments: comments,
			users:    users,
			badgerDB: db,
			release:  []io.Closer{posts, comments, users},
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

func (s *store) Close() error {
	if s.badgerDB != nil {
		var errs []error
		for _, c := range s.release {
			errs = append(errs, c.Close())
		}
		errs = append(errs, s.badgerDB.Close())
		return errors.Join(errs...)
	}
	return s.sqliteDB.Close()
}

// dbPath is the on-disk location of the configured database.
func dbPath(cfg *config.Config) string {
	if cfg.Storage == config.StorageSQLite {
		return cfg.SQLitePath
	}
	return cfg.BadgerPath
}

// Package manage implements the command line: serving the blog and
// maintaining its database.
package manage

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"askblog/app/config"
	"askblog/app/models"
	"askblog/app/services"

	"go.uber.org/zap"
)

// ErrUsage reports a malformed command line. The message has already been
// printed.
var ErrUsage = errors.New("usage error")

// Runner executes commands against the configured storage.
type Runner struct {
	Config *config.Config
	Logger *zap.Logger
	Stdout io.Writer
	Stdin  io.Reader
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.Stdout, format, args...)
}

// confirm asks a yes/no question, defaulting to no.
func (r *Runner) confirm(question string) bool {
	r.printf("%s [y/N] ", question)
	line, _ := bufio.NewReader(r.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// DB handles the db subcommands.
func (r *Runner) DB(ctx context.Context, args []string) error {
	if len(args) < 1 {
		r.printDBHelp()
		return ErrUsage
	}

	switch args[0] {
	case "init":
		return r.initDB()
	case "clean":
		return r.clean()
	case "backup":
		return r.backup(ctx)
	case "restore":
		if len(args) < 2 {
			r.printf("Error: backup file path required for restore\n")
			return ErrUsage
		}
		return r.restore(args[1])
	case "help":
		r.printDBHelp()
		return nil
	default:
		r.printf("Unknown db command: %s\n\n", args[0])
		r.printDBHelp()
		return ErrUsage
	}
}

func (r *Runner) printDBHelp() {
	r.printf(`Usage: askblog db <command>

Commands:
  init                            Initialize a new empty database
  clean                           Remove the database
  backup                          Write a backup into the backup directory
  restore <file>                  Replace the database with a backup
  help                            Display this help message
`)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// initDB creates the database, with its schema for sqlite.
func (r *Runner) initDB() error {
	path := dbPath(r.Config)
	if exists(path) {
		r.printf("Database already exists. Use 'clean' first if you want to reinitialize.\n")
		return nil
	}

	s, err := openStore(r.Config, r.Logger)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	if err := s.Close(); err != nil {
		return err
	}
	r.printf("Database initialized successfully at %s\n", path)
	return nil
}

// clean removes the database after confirmation.
func (r *Runner) clean() error {
	path := dbPath(r.Config)
	if !exists(path) {
		r.printf("Database is already clean (does not exist)\n")
		return nil
	}

	if !r.confirm("Are you sure you want to clean the database? This cannot be undone.") {
		r.printf("Operation cancelled\n")
		return nil
	}
	if err := removeDB(r.Config); err != nil {
		return fmt.Errorf("clean database: %w", err)
	}
	r.printf("Database cleaned successfully\n")
	return nil
}

func removeDB(cfg *config.Config) error {
	if cfg.Storage == config.StorageSQLite {
		for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
			if err := os.Remove(cfg.SQLitePath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
		return nil
	}
	return os.RemoveAll(cfg.BadgerPath)
}

// backup writes a timestamped copy of the database into the backup directory.
func (r *Runner) backup(ctx context.Context) error {
	if !exists(dbPath(r.Config)) {
		r.printf("No database exists to backup\n")
		return nil
	}
	if err := os.MkdirAll(r.Config.BackupDir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	s, err := openStore(r.Config, r.Logger)
	if err != nil {
		return err
	}
	defer s.Close()

	backupFile := filepath.Join(r.Config.BackupDir, fmt.Sprintf("backup_%s_%d.db", r.Config.Storage, time.Now().Unix()))
	if s.sqliteDB != nil {
		err = s.sqliteDB.Backup(ctx, backupFile)
	} else {
		err = badgerBackup(s, backupFile)
	}
	if err != nil {
		return fmt.Errorf("backup database: %w", err)
	}

	r.printf("Database backed up successfully to %s\n", backupFile)
	return nil
}

func badgerBackup(s *store, backupFile string) error {
	f, err := os.Create(backupFile)
	if err != nil {
		return err
	}
	if _, err := s.badgerDB.Backup(f, 0); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// restore replaces the database with backupFile.
func (r *Runner) restore(backupFile string) error {
	if !exists(backupFile) {
		r.printf("Backup file does not exist: %s\n", backupFile)
		return nil
	}

	if exists(dbPath(r.Config)) {
		if !r.confirm("Existing database found. Do you want to replace it?") {
			r.printf("Operation cancelled\n")
			return nil
		}
		if err := removeDB(r.Config); err != nil {
			return fmt.Errorf("remove existing database: %w", err)
		}
	}

	if r.Config.Storage == config.StorageSQLite {
		if err := copyFile(backupFile, r.Config.SQLitePath); err != nil {
			return fmt.Errorf("restore database: %w", err)
		}
		// Opening checks the copy is a usable database.
		s, err := openStore(r.Config, r.Logger)
		if err != nil {
			return fmt.Errorf("restore database: %w", err)
		}
		s.Close()
	} else if err := r.badgerRestore(backupFile); err != nil {
		return fmt.Errorf("restore database: %w", err)
	}

	r.printf("Database restored successfully\n")
	return nil
}

func (r *Runner) badgerRestore(backupFile string) error {
	s, err := openStore(r.Config, r.Logger)
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.badgerDB.Load(f, 4)
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CreateSuperuser adds a staff account that can open the admin dashboard.
func (r *Runner) CreateSuperuser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	fs.SetOutput(r.Stdout)
	username := fs.String("username", "", "login name of the new staff account")
	password := fs.String("password", "", "password of the new staff account")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if *username == "" || *password == "" {
		r.printf("Error: -username and -password are required\n")
		fs.PrintDefaults()
		return ErrUsage
	}

	s, err := openStore(r.Config, r.Logger)
	if err != nil {
		return err
	}
	defer s.Close()

	user, err := services.NewAccountService(s.users, r.Config.BcryptCost).CreateSuperuser(ctx, *username, *password)
	if err != nil {
		var fe models.FieldErrors
		if errors.As(err, &fe) {
			r.printf("Error: %s\n", strings.TrimPrefix(fe.Error(), "invalid form: "))
			return ErrUsage
		}
		return err
	}
	r.printf("Superuser %s created successfully\n", user.Username)
	return nil
}

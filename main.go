package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"askblog/app/config"
	"askblog/app/logging"
	"askblog/manage"
)

const CliVersion = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stdin))
}

// run dispatches a command line and returns the process exit code.
func run(args []string, stdout io.Writer, stdin io.Reader) int {
	if len(args) < 1 {
		printHelp(stdout)
		return 1
	}

	cmd := strings.ToLower(args[0])
	switch cmd {
	case "help":
		printHelp(stdout)
		return 0
	case "version":
		fmt.Fprintf(stdout, "askblog version %s\n", CliVersion)
		return 0
	case "serve", "db", "createsuperuser":
	default:
		fmt.Fprintf(stdout, "Unknown command: %s\n\n", args[0])
		printHelp(stdout)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	runner := &manage.Runner{Config: cfg, Logger: logger, Stdout: stdout, Stdin: stdin}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = runner.Serve(ctx, nil)
	case "db":
		err = runner.DB(ctx, args[1:])
	case "createsuperuser":
		err = runner.CreateSuperuser(ctx, args[1:])
	}
	if errors.Is(err, manage.ErrUsage) {
		return 1
	}
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `Usage: askblog <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve                          Run the blog service.
  db <init|clean|backup|restore> Maintain the database (see "db help").
  createsuperuser -username <name> -password <password>
                                 Create a staff account for /admin/.

Settings are read from BLOG_* environment variables and an optional .env file.
`)
}

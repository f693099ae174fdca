package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedExit   int
		expectedOutput string
	}{
		{
			name:           "no arguments",
			args:           nil,
			expectedExit:   1,
			expectedOutput: "Usage: askblog <command>",
		},
		{
			name:           "help command",
			args:           []string{"help"},
			expectedExit:   0,
			expectedOutput: "Usage: askblog <command> [options]",
		},
		{
			name:           "version command",
			args:           []string{"version"},
			expectedExit:   0,
			expectedOutput: "askblog version " + CliVersion,
		},
		{
			name:           "unknown command",
			args:           []string{"unknown"},
			expectedExit:   1,
			expectedOutput: "Unknown command: unknown",
		},
		{
			name:           "db without subcommand",
			args:           []string{"db"},
			expectedExit:   1,
			expectedOutput: "Usage: askblog db <command>",
		},
		{
			name:           "createsuperuser without flags",
			args:           []string{"createsuperuser"},
			expectedExit:   1,
			expectedOutput: "-username and -password are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BLOG_STORAGE", "sqlite")
			t.Setenv("BLOG_SQLITE_PATH", t.TempDir()+"/blog.db")

			var out bytes.Buffer
			code := run(tt.args, &out, strings.NewReader(""))

			assert.Equal(t, tt.expectedExit, code)
			assert.Contains(t, out.String(), tt.expectedOutput)
		})
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	t.Setenv("BLOG_STORAGE", "postgres")

	var out bytes.Buffer
	code := run([]string{"db", "init"}, &out, strings.NewReader(""))
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "unknown storage")
}

func TestPrintHelp(t *testing.T) {
	var out bytes.Buffer
	printHelp(&out)

	for _, cmd := range []string{"help", "version", "serve", "db <init|clean|backup|restore>", "createsuperuser"} {
		assert.Contains(t, out.String(), cmd)
	}
}

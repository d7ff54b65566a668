// Package cli implements the pinbump command-line interface.
//
// pinbump takes one optional positional argument, a subdirectory of the
// working directory that holds pyproject.toml and/or tox.ini, and bumps
// every "==" pin found in build-system.requires and tox deps to the latest
// release on the package index.
//
// # Output
//
// Decisions are printed to stdout, one line per requirement. Diagnostics go
// to stderr through charmbracelet/log; --verbose (-v) enables debug level,
// which traces index requests, cache hits and file writes. The logger is
// passed through context.Context.
//
// # Configuration
//
// Every flag can also be set through a PINBUMP_* environment variable; see
// package config.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pinbump/internal/config"
	"github.com/matzehuels/pinbump/pkg/buildinfo"
)

// CLI holds shared state for the command.
type CLI struct {
	Logger *log.Logger
	out    io.Writer
}

// New creates a CLI that prints status lines to stdout and logs to stderr.
func New(stdout, stderr io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(stderr, level),
		out:    stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the pinbump command.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pinbump [subdirectory]",
		Short: "Bump pinned Python build and test requirements to their latest release",
		Long: `pinbump finds "==" pins in pyproject.toml (build-system.requires) and tox.ini
(deps of every section) and rewrites them to the latest version published on
PyPI. Formatting and comments are preserved.

The optional subdirectory must be inside the current directory; it defaults
to the current directory itself.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Verbose {
				c.SetLogLevel(LogDebug)
			}

			var subdir string
			if len(args) == 1 {
				subdir = args[0]
			}
			return c.update(withLogger(cmd.Context(), c.Logger), cfg, subdir)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)
	config.RegisterFlags(root.Flags())

	return root
}

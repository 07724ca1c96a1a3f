// Command textdiff compares two text files line by line.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/achu-1612/textdiff"
	"github.com/spf13/cobra"
)

// exitError carries the process exit status out of RunE.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type options struct {
	configPath  string
	encoding    string
	separator   string
	ignore      bool
	compact     bool
	trim        bool
	full        bool
	nonPrinting string
	tabWidth    int
	verbose     bool
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "textdiff [flags] OLD NEW",
		Short:         "Compare two text files line by line",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       textdiff.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := resolveConfig(cmd, &opts)
			if err != nil {
				return err
			}
			return run(stdout, config, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML configuration file")
	flags.StringVarP(&opts.encoding, "encoding", "e", "", "character encoding of both files (IANA name)")
	flags.StringVarP(&opts.separator, "separator", "s", "auto", "line separator: auto, lf, crlf or cr")
	flags.BoolVarP(&opts.ignore, "ignore-all-space", "w", false, "ignore all whitespace")
	flags.BoolVarP(&opts.compact, "ignore-space-change", "b", false, "treat whitespace runs as one space")
	flags.BoolVarP(&opts.trim, "trim-space", "t", false, "ignore leading and trailing whitespace")
	flags.BoolVarP(&opts.full, "full", "f", false, "also print unchanged lines")
	flags.StringVar(&opts.nonPrinting, "non-printing", "escape", "control characters: asis, escape, box or remove")
	flags.IntVar(&opts.tabWidth, "tab-width", 8, "expand tabs to this width, 0 keeps them")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")

	return cmd
}

// resolveConfig loads the config file, if any, and applies the flags that
// were set explicitly on top of it.
func resolveConfig(cmd *cobra.Command, opts *options) (*textdiff.Configuration, error) {
	config := textdiff.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := textdiff.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("encoding") {
		config.Encoding = opts.encoding
	}
	if flags.Changed("separator") {
		config.Separator = opts.separator
	}
	if flags.Changed("ignore-all-space") {
		config.IgnoreWhitespace = opts.ignore
	}
	if flags.Changed("ignore-space-change") {
		config.CompactWhitespace = opts.compact
	}
	if flags.Changed("trim-space") {
		config.TrimWhitespace = opts.trim
	}
	if flags.Changed("full") {
		config.Style = textdiff.StyleNormal.String()
		if opts.full {
			config.Style = textdiff.StyleFull.String()
		}
	}
	if flags.Changed("non-printing") {
		config.NonPrinting = opts.nonPrinting
	}
	if flags.Changed("tab-width") {
		config.TabWidth = opts.tabWidth
	}
	if flags.Changed("verbose") {
		config.DetailedLogging = opts.verbose
	}

	return config, config.Validate()
}

func run(stdout io.Writer, config *textdiff.Configuration, oldPath, newPath string) error {
	defaults := textdiff.Defaults{
		Encoding:  textdiff.UTF8,
		Separator: textdiff.PlatformSeparator(runtime.GOOS),
	}

	session, err := textdiff.NewSession(config, defaults)
	if err != nil {
		return err
	}
	defer session.Close()

	session.SetSource(textdiff.SideOld, textdiff.NewFileProvider(oldPath))
	session.SetSource(textdiff.SideNew, textdiff.NewFileProvider(newPath))

	sep, forced, err := config.SeparatorOverride()
	if err != nil {
		return err
	}
	if forced {
		for _, side := range []textdiff.Side{textdiff.SideOld, textdiff.SideNew} {
			if err := session.ForceSeparator(side, sep); err != nil {
				return err
			}
		}
	}

	if err := session.Diff(); err != nil {
		return err
	}

	policy, err := config.NonPrintingPolicy()
	if err != nil {
		return err
	}

	// Count what gets written so the exit status can reflect differences,
	// including a lone separator warning.
	counter := &blockCounter{}
	tw, err := textdiff.NewTextWriter(stdout, policy, config.TabWidth)
	if err != nil {
		return err
	}
	counter.BlockWriter = tw

	if err := session.Render(counter, config.RenderStyle()); err != nil {
		return err
	}

	if counter.changes > 0 {
		return &exitError{code: 1}
	}
	return nil
}

type blockCounter struct {
	textdiff.BlockWriter
	changes int
}

func (c *blockCounter) WriteBlock(b textdiff.ChangeBlock, oldLines, newLines []string) error {
	if b.Type != textdiff.BlockCommon {
		c.changes++
	}
	return c.BlockWriter.WriteBlock(b, oldLines, newLines)
}

func (c *blockCounter) WriteWarning(b textdiff.ChangeBlock, msg string) error {
	c.changes++
	return c.BlockWriter.WriteWarning(b, msg)
}

func main() {
	err := newRootCmd(os.Stdout).Execute()
	if err == nil {
		return
	}

	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}

	fmt.Fprintln(os.Stderr, "textdiff:", err)
	os.Exit(2)
}

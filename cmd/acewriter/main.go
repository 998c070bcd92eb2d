// Command acewriter writes the audio controls libraries of a game project as ATL documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/n2code/acewriter"
	"github.com/n2code/acewriter/cmd/acewriter/flags"
	"github.com/n2code/acewriter/internal/output"
	"github.com/n2code/acewriter/internal/project"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "dev"

type cliOptions struct {
	verbose   bool
	quiet     bool
	plain     bool
	directory string
	force     bool
	noConfirm bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	options := &cliOptions{}
	rootCmd := &cobra.Command{
		Use:   "acewriter",
		Short: "Write audio controls libraries as ATL documents",
		Long: `acewriter turns the audio controls project (audio_controls.yaml) into one ATL
document per library and level scope. Only changed libraries are written and
library files which are no longer produced are deleted.

The project settings are read from acewriter.yaml, searched from the working
directory upwards, and can be overridden by ACE_* environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if options.verbose && options.quiet {
				return errors.New("quiet mode and verbose mode are mutually exclusive")
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&options.verbose, flags.Verbose, "v", false, "output more details on what is done (verbose mode)")
	rootCmd.PersistentFlags().BoolVarP(&options.quiet, flags.Quiet, "q", false, "output as little as possible, i.e. only requested information (quiet mode)")
	rootCmd.PersistentFlags().BoolVarP(&options.plain, flags.Plain, "p", false, "plain output without colors or interactive prompts")
	rootCmd.PersistentFlags().StringVarP(&options.directory, flags.Directory, "C", ".", "directory to search the project config from")

	writeCmd := &cobra.Command{
		Use:   "write",
		Short: "Write changed libraries and delete stale library files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := options.open()
			if err != nil {
				return reportError(err)
			}
			var prompt acewriter.RequestChoice
			if !options.noConfirm {
				prompt = options.chooser()
			}
			_, err = handle.Save(options.force, prompt)
			return reportError(err)
		},
	}
	writeCmd.Flags().BoolVarP(&options.force, flags.Force, "f", false, "write all libraries, even if unchanged since the last pass")
	writeCmd.Flags().BoolVarP(&options.noConfirm, flags.NoConfirm, "y", false, "delete stale library files without asking")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show which library files would be written or deleted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := options.open()
			if err != nil {
				return reportError(err)
			}
			return reportError(handle.PrintStatus(options.force))
		},
	}
	statusCmd.Flags().BoolVarP(&options.force, flags.Force, "f", false, "assume all libraries changed")

	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Print all libraries with their folders and controls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := options.open()
			if err != nil {
				return reportError(err)
			}
			return reportError(handle.PrintTree())
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a control and its XML element",
		Long: `Print a control and the XML element it is written as.
The id is the one given in the project file, either as number or in ndocid form.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := project.ParseId(args[0])
			if err != nil {
				return reportError(err)
			}
			handle, err := options.open()
			if err != nil {
				return reportError(err)
			}
			return reportError(handle.Show(id))
		},
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the written library files match the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := options.open()
			if err != nil {
				return reportError(err)
			}
			return reportError(handle.Verify())
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Write libraries whenever the project changes",
		Long: `Write libraries once and then every time the project file or config file changes.
Stale library files are deleted without asking. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := options.open()
			if err != nil {
				return reportError(err)
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return reportError(handle.Watch(ctx))
		},
	}

	rootCmd.AddCommand(writeCmd, statusCmd, treeCmd, showCmd, verifyCmd, watchCmd)
	return rootCmd
}

func (o *cliOptions) interactive() bool {
	return !o.plain && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func (o *cliOptions) open() (acewriter.AceWriter, error) {
	config := acewriter.CreateConfig{AllowEscapes: o.interactive()}
	switch {
	case o.verbose:
		config.Verbosity = acewriter.VerboseMode
	case o.quiet:
		config.Verbosity = acewriter.QuietMode
	}
	return acewriter.Open(o.directory, config)
}

func (o *cliOptions) chooser() acewriter.RequestChoice {
	if o.interactive() {
		return PromptUser(true)
	}
	return AutoChooseDefaultOption(o.quiet)
}

func reportError(err error) error {
	if err != nil {
		fmt.Fprintln(os.Stderr, output.TerminalFormatAsError(err.Error()))
	}
	return err
}

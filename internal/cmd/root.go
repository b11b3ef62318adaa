// Package cmd provides the polychromatic-controller command line.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nekoprog/polychromatic/internal/instance"
	"github.com/nekoprog/polychromatic/internal/locale"
	"github.com/nekoprog/polychromatic/internal/style"
	"github.com/nekoprog/polychromatic/internal/suggest"
	"github.com/nekoprog/polychromatic/internal/troubleshoot"
	"github.com/nekoprog/polychromatic/internal/tui"
	"github.com/nekoprog/polychromatic/internal/version"
)

const appName = "polychromatic-controller"

// ExitError carries the process exit code an error deserves. Usage
// mistakes exit 2, runtime failures exit 1.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// usageErr marks err as a command line mistake.
func usageErr(err error) error {
	return &ExitError{Code: 2, Err: err}
}

// Seams for tests. The real implementations talk to the terminal, the
// lock file and the host system.
var (
	stdoutIsTerminal = func() bool {
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
	runProgram = func(model tea.Model) error {
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	}
	newTroubleshootEnv = troubleshoot.DefaultEnv
	acquireLock        = instance.Acquire
)

// options holds the root command's flag values.
type options struct {
	verbose bool
	version bool
	locale  string
	open    string
	genDocs string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Graphical RGB lighting controller for OpenRazer",
		Long: `Polychromatic is a graphical RGB lighting controller for OpenRazer.

The Controller opens on the devices tab. Use --open to jump straight to
a tab or dialog at launch; the program exits when a dialog opened this
way closes.

Examples:
  polychromatic-controller
  polychromatic-controller --open troubleshoot
  polychromatic-controller --locale fr_FR --verbose`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return usageErr(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Show debug messages")
	flags.BoolVar(&opts.version, "version", false, "Print version information and exit")
	flags.StringVar(&opts.locale, "locale", "", "Force a specific language, e.g. fr_FR")
	flags.StringVar(&opts.open, "open", "", "Open a specific tab or dialog at launch")
	flags.StringVar(&opts.genDocs, "gen-docs", "", "Write the manual page into a directory")
	_ = flags.MarkHidden("gen-docs")
	flags.BoolP("help", "h", false, "Show this help message and exit")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErr(err)
	})

	return cmd
}

// Execute runs the Controller and returns its process exit code.
func Execute() int {
	return run(newRootCommand(), os.Stderr)
}

func run(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintf(stderr, "%s %s\n", style.Error.Render("Error:"), err)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == 2 {
			fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", appName)
		}
		return exitErr.Code
	}
	return 1
}

func runRoot(cmd *cobra.Command, opts *options) error {
	if opts.genDocs != "" {
		return writeDocs(cmd, opts.genDocs)
	}

	sessionID := uuid.NewString()
	setupLogging(opts.verbose, sessionID)

	if opts.version {
		version.Collect().Write(cmd.OutOrStdout())
		return nil
	}

	catalog, err := locale.Resolve(opts.locale, os.Getenv)
	if err != nil {
		slog.Warn("requested locale is unavailable, staying with English",
			"locale", opts.locale, "error", err)
	}
	slog.Debug("locale resolved", "tag", catalog.Tag(), "chosen_by", catalog.ChosenBy())

	var start tui.Target
	if opts.open != "" {
		target, ok := tui.LookupTarget(opts.open)
		if !ok {
			return usageErr(unknownTargetError(opts.open))
		}
		start = target
	}

	// Without a terminal the reporting surfaces still work, the rest of
	// the interface cannot.
	if !stdoutIsTerminal() {
		switch start.Name {
		case "troubleshoot":
			return troubleshootReport(cmd, catalog)
		case "preferences":
			return preferencesReport(cmd, catalog, opts.verbose, sessionID)
		}
		return errors.New(catalog.Tr("The Controller requires an interactive terminal."))
	}

	runtimeDir := instance.RuntimeDir(os.Getenv)
	lock, err := acquireLock(runtimeDir)
	if err != nil {
		if errors.Is(err, instance.ErrAlreadyRunning) {
			return errors.New(catalog.Tr("Another instance of the Controller is already running."))
		}
		return fmt.Errorf("acquiring the instance lock: %w", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			slog.Warn("releasing the instance lock", "error", err)
		}
	}()
	slog.Debug("instance lock acquired", "path", lock.Path())

	model := tui.New(tui.Options{
		Catalog:    catalog,
		Version:    version.Collect(),
		Env:        newTroubleshootEnv(),
		Verbose:    opts.verbose,
		SessionID:  sessionID,
		ConfigDir:  appDir(os.UserConfigDir),
		CacheDir:   appDir(os.UserCacheDir),
		RuntimeDir: runtimeDir,
		Start:      start,
	})
	if err := runProgram(model); err != nil {
		return fmt.Errorf("running the interface: %w", err)
	}
	return nil
}

// unknownTargetError spells out the accepted --open names and offers
// the closest one to what was typed.
func unknownTargetError(requested string) error {
	names := tui.TargetNames()
	msg := fmt.Sprintf("unknown tab or dialog %q, valid names are %s",
		requested, strings.Join(names, ", "))
	if matches := suggest.Similar(requested, names, 1); len(matches) > 0 {
		msg = fmt.Sprintf("%s. Did you mean %q?", msg, matches[0])
	}
	return errors.New(msg)
}

// appDir resolves a per-user base directory to the application's slice
// of it. The controller shows these paths but never writes to them.
func appDir(base func() (string, error)) string {
	dir, err := base()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "polychromatic")
}

// setupLogging points slog at stderr so log lines never mix into the
// interface or the reports on stdout.
func setupLogging(verbose bool, sessionID string) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler).With("session", sessionID))
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nekoprog/polychromatic/internal/manpage"
	"github.com/nekoprog/polychromatic/internal/tui"
	"github.com/nekoprog/polychromatic/internal/version"
)

// manDate is the date shown in the manual footer. It moves when the
// documented behaviour changes, not on every build.
const manDate = "August 2026"

// flagArg names the value placeholder of options that take one.
var flagArg = map[string]string{
	"locale": "lang",
	"open":   "tab/dialog",
}

// buildManPage assembles the manual from the command's own flag set and
// target registry, so the page documents exactly the interface the
// binary exposes.
func buildManPage(cmd *cobra.Command) *manpage.Page {
	name := strings.ReplaceAll(appName, "-", `\-`)

	var opts []manpage.Entry
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		opts = append(opts, manpage.Entry{
			Tag:  manpage.Opt(f.Shorthand, f.Name, flagArg[f.Name]),
			Text: []string{optionDoc(f)},
		})
	})

	var targets []manpage.Entry
	for _, t := range tui.Targets() {
		targets = append(targets, manpage.Entry{
			Tag:  manpage.Bold(t.Name),
			Text: []string{targetDoc(t)},
		})
	}

	return &manpage.Page{
		Title:    appName,
		Section:  1,
		Date:     manDate,
		Source:   "Polychromatic " + version.Version,
		Manual:   "Polychromatic Manual",
		Short:    "graphical RGB lighting controller",
		Synopsis: []string{`[\fIOPTIONS\fR]`},
		Sections: []manpage.Section{
			{
				Title: "DESCRIPTION",
				Text: []string{
					manpage.Bold(name) + " is the graphical front end of Polychromatic, a lighting controller for OpenRazer devices.",
					"The Controller opens on the devices tab. The tabs along the top of the window switch between pages, and the preferences, troubleshooter and saved colours dialogs sit on top of whichever tab is open.",
				},
			},
			{Title: "OPTIONS", Entries: opts},
			{Title: "TABS AND DIALOGS", Entries: targets},
			{
				Title: "EXIT STATUS",
				Entries: []manpage.Entry{
					{Tag: manpage.Bold("0"), Text: []string{"Successful run."}},
					{Tag: manpage.Bold("1"), Text: []string{"A runtime failure, such as another instance holding the lock."}},
					{Tag: manpage.Bold("2"), Text: []string{"A command line usage mistake."}},
				},
			},
			{
				Title: "ENVIRONMENT",
				Entries: []manpage.Entry{
					{
						Tag:  manpage.Bold("LC_ALL") + ", " + manpage.Bold("LC_MESSAGES") + ", " + manpage.Bold("LANG"),
						Text: []string{"Choose the display language when " + manpage.Bold(`\-\-locale`) + " is not given. The variables are consulted in that order and the first usable value wins."},
					},
					{
						Tag:  manpage.Bold("XDG_RUNTIME_DIR"),
						Text: []string{"Where the single instance lock is kept. Defaults to the system temporary directory."},
					},
				},
			},
			{
				Title: "SEE ALSO",
				Text:  []string{`.BR openrazer\-daemon (8)`},
			},
		},
	}
}

// optionDoc is the manual text per option. Options without a dedicated
// entry fall back to their usage string.
func optionDoc(f *pflag.Flag) string {
	switch f.Name {
	case "help":
		return "Show this help message and exit."
	case "verbose":
		return "Show debug messages. Log output is written to standard error."
	case "version":
		return "Print the version, the build commit, the save data revision, and the runtime and toolkit versions, then exit."
	case "locale":
		return fmt.Sprintf("Force a specific language for this session, e.g. %s or %s. Without this option the %s, %s and %s environment variables choose the language.",
			manpage.Bold("fr_FR"), manpage.Bold("nl"),
			manpage.Bold("LC_ALL"), manpage.Bold("LC_MESSAGES"), manpage.Bold("LANG"))
	case "open":
		return openDoc()
	}
	return manpage.Escape(f.Usage) + "."
}

// openDoc describes --open from the target registry, so the manual can
// never drift from the names the flag accepts.
func openDoc() string {
	var tabs, dialogs []string
	for _, t := range tui.Targets() {
		name := manpage.Bold(t.Name)
		if t.Kind == tui.KindTab {
			tabs = append(tabs, name)
		} else {
			dialogs = append(dialogs, name)
		}
	}
	return fmt.Sprintf("Open the interface at a specific tab or dialog. Tabs: %s. Dialogs: %s. The program exits when a dialog opened this way closes.",
		strings.Join(tabs, ", "), strings.Join(dialogs, ", "))
}

func targetDoc(t tui.Target) string {
	switch t.Name {
	case "devices":
		return "Backend and device status. Devices appear here once a backend is installed and running."
	case "effects":
		return "The custom effect library."
	case "preferences":
		return "Session information: version, locale, logging and colour support."
	case "troubleshoot":
		return "Runs a series of checks against the OpenRazer installation and suggests fixes for anything that fails."
	case "colours":
		return "The saved colour list used when picking lighting colours."
	}
	return ""
}

// writeDocs renders the manual page into dir and prints the path.
func writeDocs(cmd *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	path := filepath.Join(dir, appName+".1")
	if err := os.WriteFile(path, buildManPage(cmd).Render(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

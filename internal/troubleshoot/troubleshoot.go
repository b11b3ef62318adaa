// Package troubleshoot inspects an OpenRazer installation and reports
// what is broken, with suggestions for putting it right.
//
// The checks look at the host system only: installed binaries, DKMS
// build artefacts, kernel modules, group membership and log files. They
// never speak to the daemon itself.
package troubleshoot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nekoprog/polychromatic/internal/style"
)

// ErrUnsupportedSystem reports that the host is not a Linux system.
var ErrUnsupportedSystem = errors.New("only Linux systems can be checked")

// Translator turns an English source string into the session locale.
type Translator func(string) string

// Status is the outcome of a single check.
type Status int

const (
	// StatusUnknown means the check could not decide either way.
	StatusUnknown Status = iota
	// StatusPassed means the check found nothing wrong.
	StatusPassed
	// StatusFailed means the check found a problem.
	StatusFailed
)

// String returns the English name of the status. Display code passes it
// through a Translator.
func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "Passed"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Result is the outcome of one check. Suggestions are always populated;
// they only matter when the status is not StatusPassed. Lines starting
// with "$ " are shell commands and are never translated.
type Result struct {
	Name        string
	Status      Status
	Suggestions []string
}

// check is one unit of troubleshooting work. A check may emit several
// results (the DKMS checks do) or none when it does not apply to this
// system.
type check struct {
	name string
	run  func(ctx context.Context, env *Env, tr Translator) []Result
}

// checks run concurrently but report in this order.
var checks = []check{
	{"daemon-installed", checkDaemonInstalled},
	{"python-library", checkPythonLibrary},
	{"daemon-running", checkDaemonRunning},
	{"dkms", checkDKMS},
	{"secure-boot", checkSecureBoot},
	{"plugdev-group", checkPlugdevGroup},
	{"daemon-log", checkDaemonLog},
	{"latest-version", checkLatestVersion},
}

// Run executes every check against env and returns the results in a
// fixed order. The checks are independent, so they run concurrently.
func Run(ctx context.Context, env *Env, tr Translator) ([]Result, error) {
	if env.GOOS != "linux" {
		return nil, ErrUnsupportedSystem
	}

	type group struct {
		order   int
		results []Result
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	groups := make([]group, 0, len(checks))

	for i, c := range checks {
		wg.Add(1)
		go func(order int, c check) {
			defer wg.Done()
			started := time.Now()
			results := c.run(ctx, env, tr)
			slog.DebugContext(ctx, "troubleshooter check finished",
				"check", c.name, "results", len(results), "elapsed", time.Since(started))

			mu.Lock()
			defer mu.Unlock()
			groups = append(groups, group{order: order, results: results})
		}(i, c)
	}
	wg.Wait()

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].order < groups[j].order
	})

	var results []Result
	for _, g := range groups {
		results = append(results, g.results...)
	}
	return results, nil
}

// Summary counts results by status.
type Summary struct {
	Passed  int
	Failed  int
	Unknown int
	Total   int
}

// Summarise tallies a result list.
func Summarise(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		default:
			s.Unknown++
		}
	}
	s.Total = len(results)
	return s
}

// WriteReport renders results as a plain report for non-interactive
// sessions. Suggestions appear under every check that did not pass.
func WriteReport(w io.Writer, results []Result, tr Translator) {
	fmt.Fprintln(w, style.Bold.Render(tr("OpenRazer Troubleshooter")))
	fmt.Fprintln(w)

	for _, r := range results {
		var glyph string
		switch r.Status {
		case StatusPassed:
			glyph = style.Success.Render("✓")
		case StatusFailed:
			glyph = style.Error.Render("✗")
		default:
			glyph = style.Warning.Render("?")
		}
		fmt.Fprintf(w, " %s %s\n", glyph, r.Name)
		if r.Status == StatusPassed {
			continue
		}
		for _, suggestion := range r.Suggestions {
			fmt.Fprintf(w, "     %s\n", style.Dim.Render(suggestion))
		}
	}

	summary := Summarise(results)
	fmt.Fprintln(w)
	fmt.Fprintf(w, tr("%d of %d checks passed"), summary.Passed, summary.Total)
	fmt.Fprintln(w)
}

// Backend describes whether the OpenRazer software is present on this
// system. It is a presence probe, not a connection.
type Backend struct {
	Installed bool
	Running   bool
}

// BackendPresence reports whether the daemon is installed and running.
func BackendPresence(env *Env) Backend {
	var b Backend
	if _, err := env.LookPath("openrazer-daemon"); err == nil {
		b.Installed = true
	}
	b.Running = daemonRunning(env)
	return b
}

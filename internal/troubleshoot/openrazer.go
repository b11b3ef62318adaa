package troubleshoot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

func statusOf(ok bool) Status {
	if ok {
		return StatusPassed
	}
	return StatusFailed
}

func checkDaemonInstalled(_ context.Context, env *Env, tr Translator) []Result {
	_, err := env.LookPath("openrazer-daemon")
	return []Result{{
		Name:   tr("Daemon is installed"),
		Status: statusOf(err == nil),
		Suggestions: []string{
			tr("Install the 'openrazer-meta' package for your distribution."),
		},
	}}
}

func checkPythonLibrary(ctx context.Context, env *Env, tr Translator) []Result {
	_, code, err := env.Run(ctx, "python3", "-c", "import openrazer.client")
	return []Result{{
		Name:   tr("Python library is installed"),
		Status: statusOf(err == nil && code == 0),
		Suggestions: []string{
			tr("Install the 'python3-openrazer' package for your distribution."),
			tr("Check the PYTHONPATH environment variable is correct."),
		},
	}}
}

func checkDaemonRunning(_ context.Context, env *Env, tr Translator) []Result {
	return []Result{{
		Name:   tr("Daemon is running"),
		Status: statusOf(daemonRunning(env)),
		Suggestions: []string{
			tr("Start the daemon from the terminal. Run this command and look for errors:"),
			"$ openrazer-daemon -Fv",
		},
	}}
}

// daemonRunning follows the daemon's pid file and checks the process is
// still alive.
func daemonRunning(env *Env) bool {
	pidFile := filepath.Join("/run/user", strconv.Itoa(env.Getuid()), "openrazer-daemon.pid")
	if dir := env.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		pidFile = filepath.Join(dir, "openrazer-daemon.pid")
	}

	data, err := env.ReadFile(pidFile)
	if err != nil {
		return false
	}
	line, _, _ := strings.Cut(string(data), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return false
	}
	return env.PathExists("/proc/" + strconv.Itoa(pid))
}

// checkDKMS covers the driver build chain: sources on disk, a build for
// the running kernel, a loadable module and a loaded module. The first
// two need the installed version, so they stay unknown when the daemon
// cannot report one.
func checkDKMS(ctx context.Context, env *Env, tr Translator) []Result {
	version := daemonVersion(ctx, env)

	srcStatus, builtStatus := StatusUnknown, StatusUnknown
	if version != "" {
		if release, machine, err := env.Uname(); err == nil {
			src := "/var/lib/dkms/openrazer-driver/" + version
			built := fmt.Sprintf("/var/lib/dkms/openrazer-driver/kernel-%s-%s", release, machine)
			srcStatus = statusOf(env.PathExists(src))
			builtStatus = statusOf(env.PathExists(built))
		}
	}

	installVersion := version
	if installVersion == "" {
		installVersion = "x.x.x"
	}

	results := []Result{
		{
			Name:   tr("DKMS sources are installed"),
			Status: srcStatus,
			Suggestions: []string{
				tr("Install the 'openrazer-driver-dkms' package for your distribution."),
			},
		},
		{
			Name:   tr("DKMS module has been built for this kernel version"),
			Status: builtStatus,
			Suggestions: []string{
				tr("Ensure you have the correct Linux kernel headers package installed for your distribution."),
				tr("Your distro's package system might not have rebuilt the DKMS module (this can happen with kernel or OpenRazer updates). Try running:"),
				"$ sudo dkms install -m openrazer-driver/" + installVersion,
			},
		},
	}

	_, code, err := env.Run(ctx, "modprobe", "-n", "razerkbd")
	results = append(results, Result{
		Name:   tr("DKMS module can be probed"),
		Status: statusOf(err == nil && code == 0),
		Suggestions: []string{
			tr("For full error details, run:"),
			"$ sudo modprobe razerkbd",
		},
	})

	out, _, err := env.Run(ctx, "lsmod")
	results = append(results, Result{
		Name:   tr("DKMS module is currently loaded"),
		Status: statusOf(err == nil && strings.Contains(out, "razer")),
		Suggestions: []string{
			tr("For full error details, run:"),
			"$ sudo modprobe razerkbd",
		},
	})

	return results
}

// checkSecureBoot only applies to EFI systems. The SecureBoot efivar
// ends with a flag byte: 1 when enabled.
func checkSecureBoot(_ context.Context, env *Env, tr Translator) []Result {
	if !env.PathExists("/sys/firmware/efi") {
		return nil
	}

	name := tr("Check Secure Boot (EFI) status")
	reason := tr("Secure Boot prevents the driver from loading, as OpenRazer's kernel modules built by DKMS are usually unsigned.")

	matches, err := env.Glob("/sys/firmware/efi/efivars/SecureBoot*")
	if err == nil && len(matches) > 0 {
		if data, err := env.ReadFile(matches[0]); err == nil && len(data) > 0 {
			return []Result{{
				Name:   name,
				Status: statusOf(data[len(data)-1] == 0),
				Suggestions: []string{
					tr("Secure boot is enabled. Turn it off in the system's EFI settings or sign the modules yourself."),
					reason,
				},
			}}
		}
	}

	return []Result{{
		Name:   name,
		Status: StatusUnknown,
		Suggestions: []string{
			tr("Unable to automatically check. If it's enabled, turn it off in the system's EFI settings or sign the modules yourself."),
			reason,
		},
	}}
}

func checkPlugdevGroup(_ context.Context, env *Env, tr Translator) []Result {
	status := StatusUnknown
	if groups, err := env.CurrentGroups(); err == nil {
		status = statusOf(slices.Contains(groups, "plugdev"))
	}
	return []Result{{
		Name:   tr("User account has been added to the 'plugdev' group"),
		Status: status,
		Suggestions: []string{
			tr("Run this command, log out, then log back in to the computer:"),
			"$ sudo gpasswd -a $USER plugdev",
			tr("If you've recently installed, you may need to restart the computer."),
		},
	}}
}

// checkDaemonLog scans the daemon's log for the sysfs permission error
// that follows a missed udev rule. No log, no result.
func checkDaemonLog(_ context.Context, env *Env, tr Translator) []Result {
	home, err := env.HomeDir()
	if err != nil {
		return nil
	}
	logPath := filepath.Join(home, ".local/share/openrazer/logs/razer.log")
	data, err := env.ReadFile(logPath)
	if err != nil {
		return nil
	}

	return []Result{{
		Name:   tr("Check OpenRazer log for plugdev permission errors"),
		Status: statusOf(!strings.Contains(string(data), "Could not access /sys/")),
		Suggestions: []string{
			tr("Restarting (or replugging) usually fixes the problem."),
			tr("To reset this error, clear the log:") + " " + logPath,
		},
	}}
}

// checkLatestVersion compares the installed daemon version against the
// published one. Network failure downgrades the result to unknown
// rather than failing the run.
func checkLatestVersion(ctx context.Context, env *Env, tr Translator) []Result {
	local := daemonVersion(ctx, env)
	if local == "" {
		return nil
	}

	name := tr("OpenRazer is the latest version")
	remote := latestVersion(ctx, env)
	if remote == "" {
		return []Result{{
			Name:   name,
			Status: StatusUnknown,
			Suggestions: []string{
				tr("Unable to retrieve this data from OpenRazer's website."),
				tr("Check the OpenRazer website to confirm your device is listed as supported."),
				tr("If you're checking the GitHub repository, check the 'stable' branch."),
			},
		}}
	}

	return []Result{{
		Name:   name,
		Status: statusOf(!versionNewer(remote, local)),
		Suggestions: []string{
			tr("There is a new version of OpenRazer available."),
			tr("New versions add support for more devices and address device-specific issues."),
			fmt.Sprintf(tr("Your version: %s"), local),
			fmt.Sprintf(tr("Latest version: %s"), remote),
		},
	}}
}

// daemonVersion asks the installed daemon for its version. Empty when
// the daemon is missing or prints something unexpected.
func daemonVersion(ctx context.Context, env *Env) string {
	out, code, err := env.Run(ctx, "openrazer-daemon", "--version")
	if err != nil || code != 0 {
		return ""
	}
	version, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	version = strings.TrimSpace(version)
	if _, ok := parseVersion(version); !ok {
		return ""
	}
	return version
}

// latestVersion fetches the published version number. The response must
// look like a three-part version to count.
func latestVersion(ctx context.Context, env *Env) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.LatestVersionURL, nil)
	if err != nil {
		return ""
	}
	resp, err := env.HTTPClient.Do(req)
	if err != nil {
		slog.DebugContext(ctx, "could not retrieve the latest OpenRazer version",
			"url", env.LatestVersionURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return ""
	}
	version := strings.TrimSpace(string(body))
	if _, ok := parseVersion(version); !ok {
		return ""
	}
	return version
}

func parseVersion(s string) ([3]int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return [3]int{}, false
	}
	var v [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return [3]int{}, false
		}
		v[i] = n
	}
	return v, true
}

// versionNewer reports whether version a is a later release than b.
func versionNewer(a, b string) bool {
	va, ok := parseVersion(a)
	if !ok {
		return false
	}
	vb, ok := parseVersion(b)
	if !ok {
		return false
	}
	for i := range va {
		if va[i] != vb[i] {
			return va[i] > vb[i]
		}
	}
	return false
}

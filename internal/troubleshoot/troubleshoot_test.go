package troubleshoot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func identity(s string) string { return s }

func serveVersion(t *testing.T, status int, body string) (*http.Client, string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server.Client(), server.URL
}

// healthyEnv simulates a system where every check passes: daemon 3.5.1
// installed and running, DKMS built for the current kernel, secure boot
// off, user in plugdev, clean log, and 3.5.1 published upstream.
func healthyEnv(t *testing.T) *Env {
	t.Helper()

	files := map[string][]byte{
		"/run/user/1000/openrazer-daemon.pid":              []byte("4242\n"),
		"/home/test/.local/share/openrazer/logs/razer.log": []byte("daemon started\n"),
		"/sys/firmware/efi/efivars/SecureBoot-test":        {6, 0, 0, 0, 0},
	}
	exists := map[string]bool{
		"/proc/4242": true,
		"/var/lib/dkms/openrazer-driver/3.5.1":                    true,
		"/var/lib/dkms/openrazer-driver/kernel-6.1.0-test-x86_64": true,
		"/sys/firmware/efi": true,
	}

	client, url := serveVersion(t, http.StatusOK, "3.5.1\n")

	return &Env{
		GOOS:   "linux",
		Getenv: func(string) string { return "" },
		Getuid: func() int { return 1000 },
		LookPath: func(file string) (string, error) {
			if file == "openrazer-daemon" {
				return "/usr/bin/openrazer-daemon", nil
			}
			return "", exec.ErrNotFound
		},
		Run: func(_ context.Context, name string, args ...string) (string, int, error) {
			switch name {
			case "openrazer-daemon":
				return "3.5.1\n", 0, nil
			case "python3":
				return "", 0, nil
			case "modprobe":
				return "", 0, nil
			case "lsmod":
				return "Module                  Size  Used by\nrazerkbd               24576  0\n", 0, nil
			}
			return "", -1, errors.New("unexpected command: " + name)
		},
		ReadFile: func(path string) ([]byte, error) {
			if data, ok := files[path]; ok {
				return data, nil
			}
			return nil, os.ErrNotExist
		},
		PathExists: func(path string) bool { return exists[path] },
		Glob: func(pattern string) ([]string, error) {
			if pattern == "/sys/firmware/efi/efivars/SecureBoot*" {
				return []string{"/sys/firmware/efi/efivars/SecureBoot-test"}, nil
			}
			return nil, nil
		},
		Uname:         func() (string, string, error) { return "6.1.0-test", "x86_64", nil },
		CurrentGroups: func() ([]string, error) { return []string{"wheel", "plugdev"}, nil },
		HomeDir:       func() (string, error) { return "/home/test", nil },

		HTTPClient:       client,
		LatestVersionURL: url,
	}
}

func resultByName(t *testing.T, results []Result, name string) Result {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no result named %q", name)
	return Result{}
}

func resultNames(results []Result) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	return names
}

func TestRunHealthySystem(t *testing.T) {
	t.Parallel()

	results, err := Run(context.Background(), healthyEnv(t), identity)
	require.NoError(t, err)

	require.Equal(t, []string{
		"Daemon is installed",
		"Python library is installed",
		"Daemon is running",
		"DKMS sources are installed",
		"DKMS module has been built for this kernel version",
		"DKMS module can be probed",
		"DKMS module is currently loaded",
		"Check Secure Boot (EFI) status",
		"User account has been added to the 'plugdev' group",
		"Check OpenRazer log for plugdev permission errors",
		"OpenRazer is the latest version",
	}, resultNames(results))

	for _, r := range results {
		require.Equal(t, StatusPassed, r.Status, r.Name)
		require.NotEmpty(t, r.Suggestions, r.Name)
	}

	summary := Summarise(results)
	require.Equal(t, Summary{Passed: 11, Total: 11}, summary)
}

func TestRunRejectsOtherSystems(t *testing.T) {
	t.Parallel()

	env := healthyEnv(t)
	env.GOOS = "darwin"

	_, err := Run(context.Background(), env, identity)
	require.ErrorIs(t, err, ErrUnsupportedSystem)
}

func TestDaemonMissing(t *testing.T) {
	t.Parallel()

	env := healthyEnv(t)
	env.LookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	env.Run = func(_ context.Context, name string, args ...string) (string, int, error) {
		switch name {
		case "openrazer-daemon":
			return "command not found", 127, nil
		case "python3":
			return "ModuleNotFoundError", 1, nil
		case "modprobe":
			return "modprobe: FATAL: Module razerkbd not found", 1, nil
		case "lsmod":
			return "Module                  Size  Used by\n", 0, nil
		}
		return "", -1, errors.New("unexpected command: " + name)
	}

	results, err := Run(context.Background(), env, identity)
	require.NoError(t, err)

	require.Equal(t, StatusFailed, resultByName(t, results, "Daemon is installed").Status)
	require.Equal(t, StatusFailed, resultByName(t, results, "Python library is installed").Status)

	// Without a daemon version the DKMS paths cannot be derived.
	require.Equal(t, StatusUnknown, resultByName(t, results, "DKMS sources are installed").Status)
	built := resultByName(t, results, "DKMS module has been built for this kernel version")
	require.Equal(t, StatusUnknown, built.Status)
	require.Contains(t, built.Suggestions, "$ sudo dkms install -m openrazer-driver/x.x.x")

	// The update check needs a local version to compare against.
	require.NotContains(t, resultNames(results), "OpenRazer is the latest version")
}

func TestDaemonNotRunning(t *testing.T) {
	t.Parallel()

	env := healthyEnv(t)
	inner := env.PathExists
	env.PathExists = func(path string) bool {
		if path == "/proc/4242" {
			return false
		}
		return inner(path)
	}

	results, err := Run(context.Background(), env, identity)
	require.NoError(t, err)

	running := resultByName(t, results, "Daemon is running")
	require.Equal(t, StatusFailed, running.Status)
	require.Contains(t, running.Suggestions, "$ openrazer-daemon -Fv")
}

func TestDaemonRunningHonoursRuntimeDir(t *testing.T) {
	t.Parallel()

	env := healthyEnv(t)
	env.Getenv = func(name string) string {
		if name == "XDG_RUNTIME_DIR" {
			return "/custom/run"
		}
		return ""
	}
	var asked []string
	env.ReadFile = func(path string) ([]byte, error) {
		asked = append(asked, path)
		return nil, os.ErrNotExist
	}

	require.False(t, daemonRunning(env))
	require.Equal(t, []string{"/custom/run/openrazer-daemon.pid"}, asked)
}

func TestSecureBoot(t *testing.T) {
	t.Parallel()

	t.Run("enabled fails", func(t *testing.T) {
		t.Parallel()
		env := healthyEnv(t)
		inner := env.ReadFile
		env.ReadFile = func(path string) ([]byte, error) {
			if path == "/sys/firmware/efi/efivars/SecureBoot-test" {
				return []byte{6, 0, 0, 0, 1}, nil
			}
			return inner(path)
		}

		results, err := Run(context.Background(), env, identity)
		require.NoError(t, err)
		require.Equal(t, StatusFailed, resultByName(t, results, "Check Secure Boot (EFI) status").Status)
	})

	t.Run("unreadable efivar is unknown", func(t *testing.T) {
		t.Parallel()
		env := healthyEnv(t)
		inner := env.ReadFile
		env.ReadFile = func(path string) ([]byte, error) {
			if path == "/sys/firmware/efi/efivars/SecureBoot-test" {
				return nil, os.ErrPermission
			}
			return inner(path)
		}

		results, err := Run(context.Background(), env, identity)
		require.NoError(t, err)
		sb := resultByName(t, results, "Check Secure Boot (EFI) status")
		require.Equal(t, StatusUnknown, sb.Status)
		require.Contains(t, sb.Suggestions[0], "Unable to automatically check")
	})

	t.Run("skipped without EFI", func(t *testing.T) {
		t.Parallel()
		env := healthyEnv(t)
		inner := env.PathExists
		env.PathExists = func(path string) bool {
			if path == "/sys/firmware/efi" {
				return false
			}
			return inner(path)
		}

		results, err := Run(context.Background(), env, identity)
		require.NoError(t, err)
		require.NotContains(t, resultNames(results), "Check Secure Boot (EFI) status")
	})
}

func TestPlugdevGroup(t *testing.T) {
	t.Parallel()

	t.Run("missing membership fails", func(t *testing.T) {
		t.Parallel()
		env := healthyEnv(t)
		env.CurrentGroups = func() ([]string, error) { return []string{"wheel"}, nil }

		results, err := Run(context.Background(), env, identity)
		require.NoError(t, err)
		plugdev := resultByName(t, results, "User account has been added to the 'plugdev' group")
		require.Equal(t, StatusFailed, plugdev.Status)
		require.Contains(t, plugdev.Suggestions, "$ sudo gpasswd -a $USER plugdev")
	})

	t.Run("lookup failure is unknown", func(t *testing.T) {
		t.Parallel()
		env := healthyEnv(t)
		env.CurrentGroups = func() ([]string, error) { return nil, errors.New("no passwd entry") }

		results, err := Run(context.Background(), env, identity)
		require.NoError(t, err)
		plugdev := resultByName(t, results, "User account has been added to the 'plugdev' group")
		require.Equal(t, StatusUnknown, plugdev.Status)
	})
}

func TestDaemonLogScan(t *testing.T) {
	t.Parallel()

	t.Run("permission error fails", func(t *testing.T) {
		t.Parallel()
		env := healthyEnv(t)
		inner := env.ReadFile
		env.ReadFile = func(path string) ([]byte, error) {
			if path == "/home/test/.local/share/openrazer/logs/razer.log" {
				return []byte("ERROR Could not access /sys/ files\n"), nil
			}
			return inner(path)
		}

		results, err := Run(context.Background(), env, identity)
		require.NoError(t, err)
		scan := resultByName(t, results, "Check OpenRazer log for plugdev permission errors")
		require.Equal(t, StatusFailed, scan.Status)
		require.Contains(t, scan.Suggestions[1], "/home/test/.local/share/openrazer/logs/razer.log")
	})

	t.Run("skipped without a log", func(t *testing.T) {
		t.Parallel()
		env := healthyEnv(t)
		inner := env.ReadFile
		env.ReadFile = func(path string) ([]byte, error) {
			if path == "/home/test/.local/share/openrazer/logs/razer.log" {
				return nil, os.ErrNotExist
			}
			return inner(path)
		}

		results, err := Run(context.Background(), env, identity)
		require.NoError(t, err)
		require.NotContains(t, resultNames(results), "Check OpenRazer log for plugdev permission errors")
	})
}

func TestLatestVersionCheck(t *testing.T) {
	t.Parallel()

	t.Run("newer release fails with both versions shown", func(t *testing.T) {
		t.Parallel()
		env := healthyEnv(t)
		env.HTTPClient, env.LatestVersionURL = serveVersion(t, http.StatusOK, "3.10.0\n")

		results, err := Run(context.Background(), env, identity)
		require.NoError(t, err)
		update := resultByName(t, results, "OpenRazer is the latest version")
		require.Equal(t, StatusFailed, update.Status)
		require.Contains(t, update.Suggestions, "Your version: 3.5.1")
		require.Contains(t, update.Suggestions, "Latest version: 3.10.0")
	})

	t.Run("server error is unknown", func(t *testing.T) {
		t.Parallel()
		env := healthyEnv(t)
		env.HTTPClient, env.LatestVersionURL = serveVersion(t, http.StatusInternalServerError, "")

		results, err := Run(context.Background(), env, identity)
		require.NoError(t, err)
		update := resultByName(t, results, "OpenRazer is the latest version")
		require.Equal(t, StatusUnknown, update.Status)
		require.Contains(t, update.Suggestions[0], "Unable to retrieve")
	})

	t.Run("garbage response is unknown", func(t *testing.T) {
		t.Parallel()
		env := healthyEnv(t)
		env.HTTPClient, env.LatestVersionURL = serveVersion(t, http.StatusOK, "<html>not found</html>")

		results, err := Run(context.Background(), env, identity)
		require.NoError(t, err)
		require.Equal(t, StatusUnknown, resultByName(t, results, "OpenRazer is the latest version").Status)
	})
}

func TestVersionNewer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want bool
	}{
		{"3.0.1", "3.0.0", true},
		{"3.0.0", "3.0.0", false},
		{"2.9.9", "3.0.0", false},
		{"4.0.0", "3.9.9", true},
		{"3.10.0", "3.2.0", true},
		{"3.0.10", "3.0.2", true},
		{"3.0", "3.0.0", false},
		{"banana", "3.0.0", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, versionNewer(tc.a, tc.b), "%s newer than %s", tc.a, tc.b)
	}
}

func TestTranslatorCoversProseNotCommands(t *testing.T) {
	t.Parallel()

	prefix := func(s string) string { return "@" + s }
	results, err := Run(context.Background(), healthyEnv(t), prefix)
	require.NoError(t, err)

	running := resultByName(t, results, "@Daemon is running")
	require.Equal(t, "@Start the daemon from the terminal. Run this command and look for errors:", running.Suggestions[0])
	require.Equal(t, "$ openrazer-daemon -Fv", running.Suggestions[1])
}

func TestBackendPresence(t *testing.T) {
	t.Parallel()

	env := healthyEnv(t)
	require.Equal(t, Backend{Installed: true, Running: true}, BackendPresence(env))

	env.LookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	require.Equal(t, Backend{Installed: false, Running: true}, BackendPresence(env))

	env.ReadFile = func(string) ([]byte, error) { return nil, os.ErrNotExist }
	require.Equal(t, Backend{Installed: false, Running: false}, BackendPresence(env))
}

func TestWriteReport(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	results := []Result{
		{Name: "Daemon is installed", Status: StatusPassed, Suggestions: []string{"never shown"}},
		{Name: "Daemon is running", Status: StatusFailed, Suggestions: []string{
			"Start the daemon from the terminal. Run this command and look for errors:",
			"$ openrazer-daemon -Fv",
		}},
		{Name: "Check Secure Boot (EFI) status", Status: StatusUnknown, Suggestions: []string{"Unable to automatically check."}},
	}

	var buf bytes.Buffer
	WriteReport(&buf, results, identity)
	out := buf.String()

	require.Contains(t, out, "OpenRazer Troubleshooter")
	require.Contains(t, out, "✓ Daemon is installed")
	require.NotContains(t, out, "never shown")
	require.Contains(t, out, "✗ Daemon is running")
	require.Contains(t, out, "$ openrazer-daemon -Fv")
	require.Contains(t, out, "? Check Secure Boot (EFI) status")
	require.Contains(t, out, "1 of 3 checks passed")
}

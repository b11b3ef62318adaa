package troubleshoot

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

const latestVersionURL = "https://openrazer.github.io/api/latest_version.txt"

// Env is the slice of the host system the checks are allowed to touch.
// Tests swap individual fields; production code uses DefaultEnv.
type Env struct {
	GOOS          string
	Getenv        func(name string) string
	Getuid        func() int
	LookPath      func(file string) (string, error)
	Run           func(ctx context.Context, name string, args ...string) (output string, exitCode int, err error)
	ReadFile      func(path string) ([]byte, error)
	PathExists    func(path string) bool
	Glob          func(pattern string) ([]string, error)
	Uname         func() (release, machine string, err error)
	CurrentGroups func() ([]string, error)
	HomeDir       func() (string, error)

	HTTPClient       *http.Client
	LatestVersionURL string
}

// DefaultEnv returns an Env backed by the real system.
func DefaultEnv() *Env {
	return &Env{
		GOOS:     runtime.GOOS,
		Getenv:   os.Getenv,
		Getuid:   os.Getuid,
		LookPath: exec.LookPath,
		Run:      runCommand,
		ReadFile: os.ReadFile,
		PathExists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
		Glob:          filepath.Glob,
		Uname:         unameInfo,
		CurrentGroups: currentGroups,
		HomeDir:       os.UserHomeDir,

		HTTPClient:       &http.Client{Timeout: 10 * time.Second},
		LatestVersionURL: latestVersionURL,
	}
}

// runCommand runs a program and hands back its combined output. A
// non-zero exit is not an error here; the checks care about the code.
func runCommand(ctx context.Context, name string, args ...string) (string, int, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), exitErr.ExitCode(), nil
		}
		return string(out), -1, err
	}
	return string(out), 0, nil
}

func unameInfo() (string, string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", "", err
	}
	return unix.ByteSliceToString(uts.Release[:]), unix.ByteSliceToString(uts.Machine[:]), nil
}

func currentGroups() ([]string, error) {
	current, err := user.Current()
	if err != nil {
		return nil, err
	}
	ids, err := current.GroupIds()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		group, err := user.LookupGroupId(id)
		if err != nil {
			continue
		}
		names = append(names, group.Name)
	}
	return names, nil
}

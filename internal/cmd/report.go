package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nekoprog/polychromatic/internal/instance"
	"github.com/nekoprog/polychromatic/internal/locale"
	"github.com/nekoprog/polychromatic/internal/troubleshoot"
	"github.com/nekoprog/polychromatic/internal/version"
)

// reportTimeout bounds a full check run, matching the interactive
// dialog's bound.
const reportTimeout = 30 * time.Second

// troubleshootReport runs the checks and prints the plain report. This
// is the non-interactive rendition of the troubleshoot dialog.
func troubleshootReport(cmd *cobra.Command, catalog *locale.Catalog) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), reportTimeout)
	defer cancel()

	results, err := troubleshoot.Run(ctx, newTroubleshootEnv(), catalog.Tr)
	if err != nil {
		if errors.Is(err, troubleshoot.ErrUnsupportedSystem) {
			return errors.New(catalog.Tr("The troubleshooter can only check Linux systems."))
		}
		return fmt.Errorf("running the troubleshooter: %w", err)
	}
	troubleshoot.WriteReport(cmd.OutOrStdout(), results, catalog.Tr)
	return nil
}

// preferencesReport prints the session information the preferences
// dialog would show.
func preferencesReport(cmd *cobra.Command, catalog *locale.Catalog, verbose bool, sessionID string) error {
	tr := catalog.Tr
	info := version.Collect()

	verbosity := tr("disabled")
	if verbose {
		verbosity = tr("enabled")
	}

	rows := [][2]string{
		{tr("Version"), info.Version},
		{tr("Commit"), info.Commit},
		{tr("Save data revision"), strconv.Itoa(info.SaveData)},
		{tr("Runtime"), info.Runtime},
		{tr("Toolkit"), info.Toolkit},
		{tr("Locale"), catalog.DisplayName()},
		{tr("Chosen by"), catalog.ChosenBy()},
		{tr("Verbose logging"), verbosity},
		{tr("Session"), sessionID},
		{tr("Config directory"), appDir(os.UserConfigDir)},
		{tr("Cache directory"), appDir(os.UserCacheDir)},
		{tr("Runtime directory"), instance.RuntimeDir(os.Getenv)},
	}

	w := cmd.OutOrStdout()
	for _, row := range rows {
		fmt.Fprintf(w, "%s: %s\n", row[0], row[1])
	}
	return nil
}

// The polychromatic-controller command is the graphical front end of
// Polychromatic, an RGB lighting controller for OpenRazer.
package main

import (
	"os"

	"github.com/nekoprog/polychromatic/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

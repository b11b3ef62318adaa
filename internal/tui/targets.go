package tui

import "strings"

// Kind separates the two sorts of --open destination. Tabs live in the
// main window; dialogs sit on top of it and can run on their own.
type Kind int

const (
	KindTab Kind = iota
	KindDialog
)

// Target is one destination --open can jump to.
type Target struct {
	Name string
	Kind Kind
}

// targets is the authoritative list. The order here is the order the
// documentation presents them in: tabs first, then dialogs.
var targets = []Target{
	{Name: "devices", Kind: KindTab},
	{Name: "effects", Kind: KindTab},
	{Name: "preferences", Kind: KindDialog},
	{Name: "troubleshoot", Kind: KindDialog},
	{Name: "colours", Kind: KindDialog},
}

// Targets returns every --open destination.
func Targets() []Target {
	out := make([]Target, len(targets))
	copy(out, targets)
	return out
}

// TargetNames returns the destination names in presentation order.
func TargetNames() []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return names
}

// LookupTarget resolves a destination name, ignoring case.
func LookupTarget(name string) (Target, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range targets {
		if t.Name == name {
			return t, true
		}
	}
	return Target{}, false
}

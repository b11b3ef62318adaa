// Package manpage renders troff manual pages with a stable byte layout,
// so a committed page can be compared against a fresh render.
//
// The model is deliberately small: sections hold paragraphs and tagged
// entries, and the caller composes any inline font markup. Nothing here
// depends on the terminal, the locale or the build, which keeps the
// output reproducible.
package manpage

import (
	"bytes"
	"fmt"
	"strings"
)

// Page is one manual page.
type Page struct {
	Title    string // command name, as typed: "polychromatic-controller"
	Section  int
	Date     string
	Source   string // e.g. "Polychromatic 0.9.5"
	Manual   string // e.g. "Polychromatic Manual"
	Short    string // the NAME line description
	Synopsis []string
	Sections []Section
}

// Section is a .SH block: leading paragraphs, then tagged entries.
type Section struct {
	Title   string
	Text    []string
	Entries []Entry
}

// Entry is a .TP block: a tag line and the lines describing it.
type Entry struct {
	Tag  string
	Text []string
}

// Render produces the page as troff source. The same page always
// renders to the same bytes.
func (p *Page) Render() []byte {
	var b bytes.Buffer

	name := strings.ReplaceAll(p.Title, "-", `\-`)
	fmt.Fprintf(&b, ".\\\" Generated by %s --gen-docs. Edits here will be overwritten.\n", p.Title)
	fmt.Fprintf(&b, ".TH %s %d \"%s\" \"%s\" \"%s\"\n",
		strings.ToUpper(name), p.Section, p.Date, p.Source, p.Manual)

	fmt.Fprintln(&b, ".SH NAME")
	fmt.Fprintf(&b, "%s \\- %s\n", name, p.Short)

	fmt.Fprintln(&b, ".SH SYNOPSIS")
	fmt.Fprintf(&b, ".B %s\n", name)
	for _, line := range p.Synopsis {
		fmt.Fprintln(&b, line)
	}

	for _, section := range p.Sections {
		fmt.Fprintf(&b, ".SH %s\n", section.Title)
		for i, para := range section.Text {
			if i > 0 {
				fmt.Fprintln(&b, ".PP")
			}
			fmt.Fprintln(&b, para)
		}
		for _, entry := range section.Entries {
			fmt.Fprintln(&b, ".TP")
			fmt.Fprintln(&b, entry.Tag)
			for i, line := range entry.Text {
				if i > 0 {
					fmt.Fprintln(&b, ".br")
				}
				fmt.Fprintln(&b, line)
			}
		}
	}

	return b.Bytes()
}

// Bold wraps s in bold font markup.
func Bold(s string) string {
	return `\fB` + s + `\fR`
}

// Italic wraps s in italic font markup.
func Italic(s string) string {
	return `\fI` + s + `\fR`
}

// Opt formats an option tag: short and long forms in bold with escaped
// dashes, and the argument name, when present, italic inside brackets.
//
//	Opt("v", "verbose", "") -> \fB\-v\fR, \fB\-\-verbose\fR
//	Opt("", "locale", "lang") -> \fB\-\-locale\fR [\fIlang\fR]
func Opt(short, long, arg string) string {
	var parts []string
	if short != "" {
		parts = append(parts, `\fB\-`+short+`\fR`)
	}
	if long != "" {
		parts = append(parts, `\fB\-\-`+long+`\fR`)
	}
	tag := strings.Join(parts, ", ")
	if arg != "" {
		tag += ` [\fI` + arg + `\fR]`
	}
	return tag
}

// Escape makes plain prose safe to emit as a troff text line.
func Escape(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\e`)
	if strings.HasPrefix(escaped, ".") || strings.HasPrefix(escaped, "'") {
		escaped = `\&` + escaped
	}
	return escaped
}

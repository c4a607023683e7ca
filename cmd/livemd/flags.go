package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid flags or arguments.
var ErrUsage = errors.New("invalid usage")

// errHelpShown is returned by parsers after -h/--help printed usage.
var errHelpShown = flag.ErrHelp

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// engineFlags holds markdown engine flags.
type engineFlags struct {
	engine     string
	shieldCode bool
	highlight  string
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common     commonFlags
	engine     engineFlags
	output     string
	standalone bool
	title      string
	css        string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common    commonFlags
	engine    engineFlags
	addr      string
	store     string
	assetsDir string
	title     string
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	common   commonFlags
	engine   engineFlags
	page     pageFlags
	output   string
	title    string
	css      string
	timeout  string
	htmlOnly bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
}

// addEngineFlags adds markdown engine flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVar(&f.engine, "engine", "", "markdown engine: pattern, goldmark")
	fs.BoolVar(&f.shieldCode, "shield-code", false, "keep code content away from markup rules")
	fs.StringVar(&f.highlight, "highlight", "", "chroma style for fenced code (implies --shield-code)")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

func newRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	fs.BoolVar(&f.standalone, "standalone", false, "wrap the fragment in a complete HTML document")
	fs.StringVar(&f.title, "title", "", "document title for --standalone")
	fs.StringVar(&f.css, "css", "", "CSS file embedded with --standalone")
	addEngineFlags(fs, &f.engine)
	addCommonFlags(fs, &f.common)
	return fs
}

func newServeFlagSet(f *serveFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.StringVar(&f.addr, "addr", "", "listen address (default :8080)")
	fs.StringVar(&f.store, "store", "", "state store: memory://, file://path.yaml, sqlite://path.db")
	fs.StringVar(&f.assetsDir, "assets", "", "directory overriding the embedded editor assets")
	fs.StringVar(&f.title, "title", "", "editor page title")
	addEngineFlags(fs, &f.engine)
	addCommonFlags(fs, &f.common)
	return fs
}

func newExportFlagSet(f *exportFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: input with .pdf)")
	fs.StringVar(&f.title, "title", "", "document title (default: file name)")
	fs.StringVar(&f.css, "css", "", "CSS file embedded in the document")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.htmlOnly, "html", false, "write the standalone HTML instead of a PDF")
	addPageFlags(fs, &f.page)
	addEngineFlags(fs, &f.engine)
	addCommonFlags(fs, &f.common)
	return fs
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newRenderFlagSet(f)
	fs.Usage = func() { printRenderUsage(stderr) }
	rest, err := parseFlagSet(fs, args, stderr)
	return f, rest, err
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newServeFlagSet(f)
	fs.Usage = func() { printServeUsage(stderr) }
	rest, err := parseFlagSet(fs, args, stderr)
	return f, rest, err
}

// parseExportFlags parses export command flags and returns positional args.
func parseExportFlags(args []string, stderr io.Writer) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := newExportFlagSet(f)
	fs.Usage = func() { printExportUsage(stderr) }
	rest, err := parseFlagSet(fs, args, stderr)
	return f, rest, err
}

func parseFlagSet(fs *flag.FlagSet, args []string, stderr io.Writer) ([]string, error) {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, errHelpShown
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs.Args(), nil
}

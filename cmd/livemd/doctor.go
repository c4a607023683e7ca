package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/livemd/internal/config"
	"github.com/alnah/livemd/internal/fileutil"
	"github.com/alnah/livemd/internal/store"
)

// Report statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// Check levels.
const (
	levelOK    = "ok"
	levelWarn  = "warn"
	levelError = "error"
)

// Sections, in print order.
const (
	sectionConfig = "Config"
	sectionServe  = "Serve"
	sectionStore  = "Store"
	sectionExport = "Export"
)

const chromeVersionTimeout = 5 * time.Second

// doctorFlags holds all flags for the doctor command. addr and store are
// checked instead of the configured values when set.
type doctorFlags struct {
	common commonFlags
	addr   string
	store  string
	json   bool
}

func newDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.StringVarP(&f.common.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.addr, "addr", "", "listen address to check")
	fs.StringVar(&f.store, "store", "", "state store DSN to check")
	fs.BoolVar(&f.json, "json", false, "output JSON")
	return fs
}

// doctorCheck is one line of the report.
type doctorCheck struct {
	Section string `json:"section"`
	Name    string `json:"name"`
	Level   string `json:"level"`
	Detail  string `json:"detail"`
	Hint    string `json:"hint,omitempty"`
}

type doctorReport struct {
	Status string        `json:"status"`
	Checks []doctorCheck `json:"checks"`
}

func (r *doctorReport) ok(section, name, detail string) {
	r.Checks = append(r.Checks, doctorCheck{Section: section, Name: name, Level: levelOK, Detail: detail})
}

func (r *doctorReport) warn(section, name, detail, hint string) {
	r.Checks = append(r.Checks, doctorCheck{Section: section, Name: name, Level: levelWarn, Detail: detail, Hint: hint})
}

func (r *doctorReport) fail(section, name, detail, hint string) {
	r.Checks = append(r.Checks, doctorCheck{Section: section, Name: name, Level: levelError, Detail: detail, Hint: hint})
}

func (r *doctorReport) finish() {
	r.Status = statusReady
	for _, c := range r.Checks {
		switch c.Level {
		case levelError:
			r.Status = statusErrors
			return
		case levelWarn:
			r.Status = statusWarnings
		}
	}
}

// runDoctorCmd executes the doctor command and returns an exit code:
// 0 when ready (warnings included), 1 when a check failed.
func runDoctorCmd(args []string, env *Environment) int {
	f := &doctorFlags{}
	fs := newDoctorFlagSet(f)
	fs.Usage = func() { runHelp([]string{"doctor"}, env) }
	rest, err := parseFlagSet(fs, args, env.Stderr)
	if errors.Is(err, errHelpShown) {
		return ExitSuccess
	}
	if err == nil && len(rest) > 0 {
		err = fmt.Errorf("%w: doctor takes no arguments, got %q", ErrUsage, rest)
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	report := runDoctor(f)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printDoctorReport(env.Stdout, report)
	}

	if report.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor checks what serve and export need, in that order.
func runDoctor(f *doctorFlags) *doctorReport {
	r := &doctorReport{}

	cfg := checkConfig(r, f)
	checkListen(r, cfg.Server.Addr)
	checkStore(r, cfg.Store.DSN)
	checkChrome(r)
	checkSandbox(r)
	checkStaging(r)

	r.finish()
	return r
}

// checkConfig loads settings the way serve does. On failure the defaults
// are returned so the remaining checks still run.
func checkConfig(r *doctorReport, f *doctorFlags) *config.Config {
	source := f.common.config
	if source == "" {
		source = loadEnvConfig().ConfigPath
	}
	if source == "" {
		source = "defaults"
	}

	cfg, err := loadSettings(&f.common, &engineFlags{})
	if err != nil {
		r.fail(sectionConfig, "load", err.Error(), hintFor(err))
		cfg = config.DefaultConfig()
	} else {
		r.ok(sectionConfig, "load", source)
	}

	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.store != "" {
		cfg.Store.DSN = f.store
	}
	if f.addr != "" || f.store != "" {
		if err := cfg.Validate(); err != nil {
			r.fail(sectionConfig, "flags", err.Error(), "")
		}
	}

	rd, err := newRenderer(cfg.Render)
	if err != nil {
		r.fail(sectionConfig, "renderer", err.Error(), "check render.engine and render.highlight")
		return cfg
	}
	detail := "engine " + rd.Engine()
	if cfg.Render.Highlight != "" {
		detail += ", highlight " + cfg.Render.Highlight
	}
	r.ok(sectionConfig, "renderer", detail)
	return cfg
}

// checkListen binds addr and releases it at once.
func checkListen(r *doctorReport, addr string) {
	ln, err := net.Listen("tcp", addr)
	switch {
	case errors.Is(err, syscall.EADDRINUSE):
		r.fail(sectionServe, "listen", addr+" is already in use", "pick another address with --addr or LIVEMD_ADDR")
		return
	case err != nil:
		r.fail(sectionServe, "listen", err.Error(), "")
		return
	}
	_ = ln.Close()
	r.ok(sectionServe, "listen", "can bind "+addr+" ("+displayURL(addr)+")")
}

// checkStore resolves dsn and reads an existing state file without writing
// anything.
func checkStore(r *doctorReport, dsn string) {
	kind, path, err := store.ParseDSN(dsn)
	if err != nil {
		r.fail(sectionStore, "dsn", err.Error(), "")
		return
	}
	if kind == store.KindMemory {
		r.ok(sectionStore, "dsn", "memory:// (content is lost when serve exits)")
		return
	}

	expanded, err := fileutil.ExpandHome(path)
	if err != nil {
		r.fail(sectionStore, "dsn", err.Error(), "")
		return
	}
	r.ok(sectionStore, "dsn", kind+" "+expanded)

	info, err := os.Stat(expanded)
	switch {
	case errors.Is(err, os.ErrNotExist):
		r.ok(sectionStore, "state", "not created yet; written on first use")
		return
	case err != nil:
		r.fail(sectionStore, "state", err.Error(), "")
		return
	case info.IsDir():
		r.fail(sectionStore, "state", expanded+" is a directory", "")
		return
	}

	if kind == store.KindFile {
		f, err := store.OpenFile(expanded)
		if err != nil {
			r.fail(sectionStore, "state", err.Error(), "fix or remove the state file")
			return
		}
		_ = f.Close()
	}
	r.ok(sectionStore, "state", fmt.Sprintf("%d bytes", info.Size()))
}

// checkChrome locates Chrome the way export does: ROD_BROWSER_BIN first,
// then rod's launcher search. Serving works without it.
func checkChrome(r *doctorReport) {
	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin == "" {
		var found bool
		if bin, found = launcher.LookPath(); !found {
			r.warn(sectionExport, "chrome", "Chrome/Chromium not found",
				"install Chrome or set ROD_BROWSER_BIN; export --html works without it")
			return
		}
	}
	if _, err := os.Stat(bin); err != nil {
		r.warn(sectionExport, "chrome", "no browser at "+bin, "fix ROD_BROWSER_BIN")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), chromeVersionTimeout)
	defer cancel()
	// #nosec G204 -- bin comes from ROD_BROWSER_BIN or launcher.LookPath
	out, err := exec.CommandContext(ctx, bin, "--version").Output()
	if err != nil {
		r.warn(sectionExport, "chrome", bin+" (version unknown: "+err.Error()+")", "")
		return
	}
	r.ok(sectionExport, "chrome", strings.TrimSpace(string(out))+" at "+bin)
}

// checkSandbox warns when export would start a sandboxed Chrome inside a
// container, where the sandbox usually fails to start.
func checkSandbox(r *doctorReport) {
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		r.ok(sectionExport, "sandbox", "disabled")
		return
	}
	if signal := containerSignal(); signal != "" {
		r.warn(sectionExport, "sandbox", "enabled inside a container ("+signal+")",
			"set CI=true or ROD_BROWSER_BIN to disable it")
		return
	}
	r.ok(sectionExport, "sandbox", "enabled")
}

// containerSignal names the first container marker found, or "".
func containerSignal() string {
	if os.Getenv("LIVEMD_CONTAINER") == "1" {
		return "LIVEMD_CONTAINER=1"
	}
	if v := os.Getenv("container"); v != "" {
		return "container=" + v
	}
	if fileutil.FileExists("/.dockerenv") {
		return "/.dockerenv"
	}
	return ""
}

// checkStaging writes the kind of temp file export hands to Chrome.
func checkStaging(r *doctorReport) {
	path, cleanup, err := fileutil.WriteTempFile("<!DOCTYPE html>", "html")
	if err != nil {
		r.fail(sectionExport, "staging", err.Error(), "make "+os.TempDir()+" writable or set TMPDIR")
		return
	}
	cleanup()
	r.ok(sectionExport, "staging", "HTML staged in "+filepath.Dir(path))
}

// printDoctorReport writes the checks grouped by section.
func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintln(w, "livemd doctor")

	for _, section := range []string{sectionConfig, sectionServe, sectionStore, sectionExport} {
		fmt.Fprintln(w)
		fmt.Fprintln(w, section)
		for _, c := range r.Checks {
			if c.Section != section {
				continue
			}
			fmt.Fprintf(w, "  [%s] %s: %s\n", strings.ToUpper(c.Level), c.Name, c.Detail)
			if c.Hint != "" {
				fmt.Fprintf(w, "         hint: %s\n", c.Hint)
			}
		}
	}
	fmt.Fprintln(w)

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: ready to serve and export")
	case statusWarnings:
		fmt.Fprintln(w, "Status: ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: not ready (see errors above)")
	}
}

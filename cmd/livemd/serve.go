package main

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/alnah/livemd"
	"github.com/alnah/livemd/internal/assets"
	"github.com/alnah/livemd/internal/server"
)

// runServe starts the live editor and blocks until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, rest)
	}

	cfg, err := loadSettings(&f.common, &f.engine)
	if err != nil {
		return err
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.store != "" {
		cfg.Store.DSN = f.store
	}
	if f.assetsDir != "" {
		cfg.Server.AssetsDir = f.assetsDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, f.common.quiet, f.common.verbose)

	r, err := newRenderer(cfg.Render)
	if err != nil {
		return err
	}

	st, err := livemd.OpenStore(ctx, cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("closing store", "error", cerr)
		}
	}()

	resolver, err := assets.NewAssetResolver(cfg.Server.AssetsDir)
	if err != nil {
		return err
	}

	srv, err := server.New(livemd.NewSession(r, st),
		server.WithAddr(cfg.Server.Addr),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeoutDuration()),
		server.WithAssets(resolver),
		server.WithHighlightCSS(r.HighlightCSS()),
		server.WithTitle(f.title),
		server.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if !f.common.quiet {
		fmt.Fprintf(env.Stderr, "livemd editor on %s (engine %s, store %s)\n",
			displayURL(srv.Addr()), r.Engine(), storeLabel(cfg.Store.DSN))
	}
	if err := srv.Run(ctx); err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return &addrInUseError{Addr: srv.Addr(), Err: err}
		}
		return err
	}
	return nil
}

// displayURL turns a listen address into a browsable URL.
func displayURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// storeLabel names the store for the startup line.
func storeLabel(dsn string) string {
	if dsn == "" {
		return "memory://"
	}
	return dsn
}

// addrInUseError reports a listen address taken by another process.
type addrInUseError struct {
	Addr string
	Err  error
}

func (e *addrInUseError) Error() string {
	return fmt.Sprintf("%v: %s", ErrAddrInUse, e.Addr)
}

func (e *addrInUseError) Unwrap() []error { return []error{ErrAddrInUse, e.Err} }

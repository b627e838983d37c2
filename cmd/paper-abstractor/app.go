// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-abstractor/internal/ai"
	"github.com/pdiddy/paper-abstractor/internal/dedup"
	"github.com/pdiddy/paper-abstractor/internal/filter"
	"github.com/pdiddy/paper-abstractor/internal/ingest"
	"github.com/pdiddy/paper-abstractor/internal/logger"
	"github.com/pdiddy/paper-abstractor/internal/note"
	"github.com/pdiddy/paper-abstractor/internal/pdftext"
)

// applyOutputFlag overrides the output folder with the -o flag when given.
func applyOutputFlag(cmd *cobra.Command) {
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.Output.Folder = out
	}
}

// resolveFolders replaces the configured watch folders with args.
func resolveFolders(args []string) error {
	folders := make([]string, 0, len(args))
	for _, a := range args {
		p, err := resolver.Resolve(a)
		if err != nil {
			return err
		}
		folders = append(folders, p)
	}
	cfg.Watch.Folders = folders
	return nil
}

// newMonitor wires the PDF extractor, filter, AI abstractor, note writer,
// and de-dup cache into a Monitor. The returned cleanup closes the cache.
func newMonitor() (*ingest.Monitor, func(), error) {
	extractor := pdftext.New(cfg.PDF)
	if err := extractor.Available(); err != nil {
		return nil, nil, err
	}

	f, err := filter.New(cfg.Filter, extractor)
	if err != nil {
		return nil, nil, err
	}

	backend, err := ai.NewBackend(cfg.AI)
	if err != nil {
		return nil, nil, err
	}
	abstractor := ai.NewAbstractor(backend, ai.NewLimiter(cfg.RateLimit), cfg.AI, cfg.Abstractor)

	cache, err := dedup.Open(cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	if err := cache.Load(); err != nil {
		logger.Warn("loading de-dup cache, starting empty: %v", err)
	}

	m := ingest.New(cfg, ingest.Deps{
		Filter:     f,
		Extractor:  extractor,
		Summarizer: abstractor,
		Renderer:   note.NewFormatter(cfg.Output, cfg.Abstractor.Language),
		Writer:     note.Writer{},
		Resolver:   resolver,
		Cache:      cache,
	})
	cleanup := func() {
		if err := cache.Close(); err != nil {
			logger.Warn("closing de-dup cache: %v", err)
		}
	}
	return m, cleanup, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// runMonitor starts m and reports the outcome counters.
func runMonitor(cmd *cobra.Command, m *ingest.Monitor, continuous bool) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	err := m.Start(ctx, continuous)
	s := m.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "written: %d  rejected: %d  skipped: %d  failed: %d\n",
		s.Written, s.Rejected, s.Skipped, s.Failed)
	if ctx.Err() != nil {
		logger.Info("interrupted")
		return withoutCancel(err)
	}
	return err
}

// withoutCancel drops context.Canceled from err, keeping any other error
// joined with it.
func withoutCancel(err error) error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var rest []error
		for _, e := range joined.Unwrap() {
			if e = withoutCancel(e); e != nil {
				rest = append(rest, e)
			}
		}
		return errors.Join(rest...)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

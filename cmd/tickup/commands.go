package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tickup/internal/config"
	"github.com/verte-zerg/tickup/internal/counter"
	"github.com/verte-zerg/tickup/internal/generator"
	"github.com/verte-zerg/tickup/internal/model"
	"github.com/verte-zerg/tickup/internal/page"
	"github.com/verte-zerg/tickup/internal/report"
	"github.com/verte-zerg/tickup/internal/scheduler"
	"github.com/verte-zerg/tickup/internal/store"
	"github.com/verte-zerg/tickup/internal/tui"
)

const (
	defaultRenderWidth   = 80
	defaultRenderHeight  = 24
	defaultRenderElapsed = 5 * time.Second
	defaultDemoCount     = 12
)

var (
	renderWidth   int
	renderHeight  int
	renderScrolls []int
	renderElapsed time.Duration

	importName string

	demoCount int
	demoSeed  int64
	demoOut   string

	formatAttrs []string
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render PAGE.toml",
		Short: "Run a page headless on a virtual clock and print the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runRenderCmd,
	}
	cmd.Flags().IntVar(&renderWidth, "width", 0, "window width (default: terminal width)")
	cmd.Flags().IntVar(&renderHeight, "height", 0, "window height (default: terminal height)")
	cmd.Flags().IntSliceVar(&renderScrolls, "scroll", []int{0}, "scroll positions to visit in order")
	cmd.Flags().DurationVar(&renderElapsed, "elapsed", defaultRenderElapsed, "virtual time spent at each scroll position")
	return cmd
}

func runRenderCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveRunConfig(cmd)
	if err != nil {
		return err
	}
	p, err := page.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}
	if renderElapsed < 0 {
		return fmt.Errorf("--elapsed must be >= 0")
	}
	width, height := renderSize(renderWidth, renderHeight)
	rc := model.RenderConfig{Width: width, Height: height, Scrolls: renderScrolls, Elapsed: renderElapsed}
	return renderHeadless(cmd, cfg, p, rc)
}

func renderHeadless(cmd *cobra.Command, cfg model.Config, p *page.Page, rc model.RenderConfig) error {
	sched := scheduler.NewManual()
	session := tui.NewSession(p, cfg, sched, rc.Width, rc.Height, logrus.StandardLogger())
	mode := session.Start()
	logrus.WithFields(logrus.Fields{"mode": mode, "width": rc.Width, "height": rc.Height}).Debug("headless render started")

	scrolls := rc.Scrolls
	if len(scrolls) == 0 {
		scrolls = []int{0}
	}
	for _, y := range scrolls {
		session.ScrollTo(y)
		sched.Advance(rc.Elapsed)
	}
	defer session.Stop()

	if err := report.RenderSnapshot(cmd.OutOrStdout(), session.Snapshot(sched.Now())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// renderSize fills unset dimensions from the terminal.
func renderSize(width, height int) (int, int) {
	if width > 0 && height > 0 {
		return width, height
	}
	tw, th, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || tw <= 0 || th <= 0 {
		tw, th = defaultRenderWidth, defaultRenderHeight
	}
	if width <= 0 {
		width = tw
	}
	if height <= 0 {
		height = th
	}
	return width, height
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import PAGE.toml",
		Short: "Store a page file in the library",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importName, "name", "", "library name (default: file name)")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	p, err := page.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}
	name := strings.TrimSpace(importName)
	if name == "" {
		base := filepath.Base(args[0])
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	if err := st.SavePage(cmd.Context(), name, p); err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d counters)\n", name, p.CounterCount()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newPagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List pages in the library",
		Args:  cobra.NoArgs,
		RunE:  runPagesCmd,
	}
}

func runPagesCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	pages, err := st.ListPages(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}
	if err := report.RenderPages(cmd.OutOrStdout(), pages); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a page from the library",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteCmd,
	}
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	if err := st.DeletePage(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete page: %w", err)
	}
	return nil
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate a random page and show it",
		Args:  cobra.NoArgs,
		RunE:  runDemoCmd,
	}
	cmd.Flags().IntVar(&demoCount, "count", defaultDemoCount, "number of counters")
	cmd.Flags().Int64Var(&demoSeed, "seed", 0, "random seed (default: time based)")
	cmd.Flags().StringVar(&demoOut, "out", "", "write the page to this file instead of showing it")
	return cmd
}

func runDemoCmd(cmd *cobra.Command, _ []string) error {
	if demoCount <= 0 {
		return fmt.Errorf("--count must be > 0")
	}
	gen := generator.New(demoSeed)
	p := gen.Page(demoCount)
	if err := p.Normalize(); err != nil {
		return fmt.Errorf("failed to build demo page: %w", err)
	}

	if demoOut != "" {
		if err := page.Write(demoOut, p); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d counters)\n", demoOut, p.CounterCount()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	cfg, err := resolveRunConfig(cmd)
	if err != nil {
		return err
	}
	// Reload draws a fresh page from the same generator.
	load := func() (*page.Page, error) {
		next := gen.Page(demoCount)
		return next, next.Normalize()
	}
	return runTUI(cfg, p, load)
}

func newFormatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format VALUE",
		Short: "Format a value the way a counter would display it",
		Args:  cobra.ExactArgs(1),
		RunE:  runFormatCmd,
	}
	cmd.Flags().StringArrayVar(&formatAttrs, "attr", nil, "counter setting as key=value (repeatable)")
	return cmd
}

func runFormatCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveRunConfig(cmd)
	if err != nil {
		return err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[0], err)
	}
	attrs, err := parseAttrs(formatAttrs, cfg.Namespace)
	if err != nil {
		return err
	}

	log := logrus.StandardLogger()
	resolver := counter.NewResolver(counter.WithNamespace(cfg.Namespace), counter.WithResolverLogger(log))
	formatter := counter.NewFormatter(counter.ParseLocale(cfg.Locale))
	text := formatter.Format(value, resolver.Resolve(attrs))
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// parseAttrs turns key=value pairs into element attributes. Short keys are
// expanded under namespace.
func parseAttrs(pairs []string, namespace string) (map[string]string, error) {
	attrs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --attr %q (want key=value)", pair)
		}
		if !strings.HasPrefix(key, strings.ToLower(namespace)) {
			key = strings.ToLower(namespace) + key
		}
		attrs[key] = value
	}
	return attrs, nil
}

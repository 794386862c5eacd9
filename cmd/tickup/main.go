// Package main provides the CLI entrypoint for tickup.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tickup/internal/config"
	"github.com/verte-zerg/tickup/internal/counter"
	"github.com/verte-zerg/tickup/internal/model"
	"github.com/verte-zerg/tickup/internal/page"
	"github.com/verte-zerg/tickup/internal/store"
	"github.com/verte-zerg/tickup/internal/tui"
	"github.com/verte-zerg/tickup/internal/visibility"
)

const (
	// Terminal rows are coarse; a one-row margin reveals counters just
	// before they scroll in.
	defaultRootMargin = 1.0
	defaultLocale     = "en"
)

var (
	runNamespace  string
	runMarker     string
	runRootMargin float64
	runThreshold  float64
	runLegacy     bool
	runLocale     string
	runPageName   string

	verbose bool
	logFile string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tickup [PAGE.toml]",
		Short: "Animated counters that start when they scroll into view",
		Long: `tickup shows a page of numeric counters in the terminal. Each counter
animates from its start to its end value once it becomes visible.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setupLogging,
		RunE:              runRunCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&logFile, "log-file", "", "write logs here while the TUI is running")
	flags.StringVar(&runNamespace, "namespace", counter.DefaultNamespace, "attribute namespace prefix")
	flags.StringVar(&runMarker, "marker", counter.DefaultMarker, "class that marks counter elements")
	flags.Float64Var(&runRootMargin, "root-margin", defaultRootMargin, "visibility margin around the window, in rows")
	flags.Float64Var(&runThreshold, "threshold", visibility.DefaultThreshold, "visible fraction that triggers a counter (0-1)")
	flags.BoolVar(&runLegacy, "legacy", false, "force scroll polling instead of intersection detection")
	flags.StringVar(&runLocale, "locale", defaultLocale, "locale for decimal formatting")

	rootCmd.Flags().StringVar(&runPageName, "page", "", "run a page from the library")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newPagesCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newFormatCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func setupLogging(_ *cobra.Command, _ []string) error {
	logrus.SetOutput(os.Stderr)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	return nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [PAGE.toml]",
		Short: "Show a counter page",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRunCmd,
	}
	cmd.Flags().StringVar(&runPageName, "page", "", "run a page from the library")
	return cmd
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveRunConfig(cmd)
	if err != nil {
		return err
	}

	var load tui.Loader
	switch {
	case len(args) == 1 && runPageName != "":
		return fmt.Errorf("give either a page file or --page, not both")
	case len(args) == 1:
		path := args[0]
		load = func() (*page.Page, error) { return page.Load(path) }
	case runPageName != "":
		name := runPageName
		load = func() (*page.Page, error) { return loadStoredPage(cmd.Context(), name) }
	default:
		return fmt.Errorf("no page given: pass PAGE.toml, --page NAME, or try 'tickup demo'")
	}

	p, err := load()
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}
	return runTUI(cfg, p, load)
}

func runTUI(cfg model.Config, p *page.Page, load tui.Loader) error {
	var logOut io.Writer
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				// Best-effort close of the log file.
				_ = cerr
			}
		}()
		logOut = file
	}
	if err := tui.Run(cfg, p, load, logOut); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func loadStoredPage(ctx context.Context, name string) (*page.Page, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)
	if ctx == nil {
		ctx = context.Background()
	}
	return st.LoadPage(ctx, name)
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logrus.WithError(cerr).Warn("failed to close db")
	}
}

// resolveRunConfig merges the config file under the command's flags.
func resolveRunConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "namespace", &runNamespace, fileCfg.Run.Namespace)
	applyStringConfig(cmd, "marker", &runMarker, fileCfg.Run.Marker)
	applyFloatConfig(cmd, "root-margin", &runRootMargin, fileCfg.Run.RootMargin)
	applyFloatConfig(cmd, "threshold", &runThreshold, fileCfg.Run.Threshold)
	applyBoolConfig(cmd, "legacy", &runLegacy, fileCfg.Run.Legacy)
	applyStringConfig(cmd, "locale", &runLocale, fileCfg.Run.Locale)

	cfg := model.Config{
		Namespace:   runNamespace,
		Marker:      runMarker,
		RootMargin:  runRootMargin,
		Threshold:   runThreshold,
		ForceLegacy: runLegacy,
		Locale:      runLocale,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	logrus.WithFields(logrus.Fields{
		"namespace": cfg.Namespace,
		"marker":    cfg.Marker,
		"legacy":    cfg.ForceLegacy,
		"locale":    cfg.Locale,
	}).Debug("resolved run config")
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.Namespace) == "" {
		return fmt.Errorf("--namespace must not be empty")
	}
	if strings.TrimSpace(cfg.Marker) == "" {
		return fmt.Errorf("--marker must not be empty")
	}
	if cfg.RootMargin < 0 {
		return fmt.Errorf("--root-margin must be >= 0")
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return fmt.Errorf("--threshold must be between 0 and 1")
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tickup configuration
# Uncomment a value to enable it. CLI flags override config values.

[run]
# namespace = %q   # Attribute namespace prefix
# marker = %q              # Class that marks counter elements
# root-margin = %.1f              # Visibility margin around the window, in rows
# threshold = %.1f                # Visible fraction that triggers a counter (0-1)
# legacy = false                 # Force scroll polling instead of intersection detection
# locale = %q                    # Locale for decimal formatting
`,
		counter.DefaultNamespace,
		counter.DefaultMarker,
		defaultRootMargin,
		visibility.DefaultThreshold,
		defaultLocale,
	)
}

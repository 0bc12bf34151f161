package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/naveenspark/nksadmin/internal/config"
	"github.com/naveenspark/nksadmin/internal/logging"
	"github.com/naveenspark/nksadmin/internal/metrics"
	"github.com/naveenspark/nksadmin/internal/tui"
	"github.com/naveenspark/nksadmin/pkg/client"
	"github.com/naveenspark/nksadmin/pkg/route"
	"github.com/naveenspark/nksadmin/pkg/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// redisPrefix namespaces session keys when sessions live in redis.
const redisPrefix = "nksadmin:"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every command. Empty
// values leave the config file and environment in charge.
type globalFlags struct {
	apiURL      string
	logLevel    string
	logFile     string
	stateDir    string
	metricsFile string
}

func (g *globalFlags) apply(cfg *config.Config) {
	if g.apiURL != "" {
		cfg.APIURL = g.apiURL
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.logFile != "" {
		cfg.LogFile = g.logFile
	}
	if g.metricsFile != "" {
		cfg.MetricsFile = g.metricsFile
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "nksadmin",
		Short:         "Admin console for the NKS store",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, g)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.apiURL, "api-url", "", "API base URL (default "+config.DefaultAPIURL+")")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&g.logFile, "log-file", "", `log file, "-" for stderr (default <state-dir>/nksadmin.log)`)
	pf.StringVar(&g.stateDir, "state-dir", "", "directory for config, session and logs (default ~/.nksadmin)")
	pf.StringVar(&g.metricsFile, "metrics-file", "", "write request metrics here on exit")

	root.AddCommand(
		loginCmd(g),
		logoutCmd(g),
		whoamiCmd(g),
		statsCmd(g),
		configCmd(g),
		versionCmd(),
	)

	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != root {
			defaultHelp(cmd, args)
			return
		}
		printHelp(cmd.OutOrStdout(), root)
	})
	return root
}

// env is everything a command needs to talk to the API.
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *session.Store
	client  *client.Client
	metrics *metrics.Gateway
	closers []io.Closer
}

// openEnv resolves configuration and builds the logger, session store and
// API client. Extra client options are applied after the defaults.
func openEnv(g *globalFlags, opts ...client.Option) (*env, error) {
	cfg, err := config.Load(g.stateDir)
	if err != nil {
		return nil, err
	}
	g.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, logCloser, err := logging.Open(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, closers: []io.Closer{logCloser}}

	storage, err := e.openStorage()
	if err != nil {
		e.closeAll() //nolint:errcheck // already failing
		return nil, err
	}
	e.store = session.NewStore(storage, session.WithLogger(log))
	if cfg.Token != "" {
		e.store.SetToken(cfg.Token)
	}

	e.metrics = metrics.NewGateway()
	base := []client.Option{
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(log),
		client.WithObserver(e.metrics),
	}
	e.client = client.New(cfg.APIURL, e.store, append(base, opts...)...)
	return e, nil
}

// openStorage picks the session backend. A token from the environment is
// kept in memory so it never reaches disk.
func (e *env) openStorage() (session.Storage, error) {
	switch {
	case e.cfg.Token != "":
		return nil, nil
	case e.cfg.RedisURL != "":
		rs, err := session.OpenRedis(e.cfg.RedisURL, redisPrefix)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, rs)
		e.log.Debug().Msg("sessions stored in redis")
		return rs, nil
	default:
		return session.NewFileStorage(e.cfg.SessionPath()), nil
	}
}

// Close writes the metrics file when configured and releases resources.
func (e *env) Close() error {
	var errs []error
	if e.cfg.MetricsFile != "" {
		if err := e.metrics.WriteFile(e.cfg.MetricsFile); err != nil {
			e.log.Warn().Err(err).Msg("metrics not written")
			errs = append(errs, err)
		}
	}
	if e.store.Degraded() {
		e.log.Warn().Msg("session storage unavailable; session was kept in memory only")
	}
	errs = append(errs, e.closeAll())
	return errors.Join(errs...)
}

func (e *env) closeAll() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// closeEnv closes e and reports failures on stderr without changing the
// command's result.
func closeEnv(cmd *cobra.Command, e *env) {
	if err := e.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
}

func runTUI(cmd *cobra.Command, g *globalFlags) error {
	var p *tea.Program
	e, err := openEnv(g, client.WithSessionExpiredHandler(func() {
		if p != nil {
			p.Send(tui.SessionExpired())
		}
	}))
	if err != nil {
		return err
	}
	defer closeEnv(cmd, e)

	app := tui.NewApp(tui.Deps{
		Backend:  e.client,
		Session:  e.store,
		Log:      e.log,
		PageSize: e.cfg.PageSize,
	}, route.Dashboard)

	p = tea.NewProgram(app, tea.WithAltScreen())
	e.log.Info().Str("api", e.cfg.APIURL).Msg("starting")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nksadmin %s\n", version)
		},
	}
}

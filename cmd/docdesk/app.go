package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/client"
	"github.com/spec-kit/docdesk/internal/clock"
	"github.com/spec-kit/docdesk/internal/config"
	"github.com/spec-kit/docdesk/internal/domain"
	"github.com/spec-kit/docdesk/internal/events"
	"github.com/spec-kit/docdesk/internal/gateway"
	"github.com/spec-kit/docdesk/internal/observability"
	"github.com/spec-kit/docdesk/internal/persistence"
	"github.com/spec-kit/docdesk/internal/repository"
	"github.com/spec-kit/docdesk/internal/service"
	"github.com/spec-kit/docdesk/internal/session"
	"github.com/spec-kit/docdesk/internal/worker"
)

var errLoginRequired = errors.New("login required: run \"docdesk login\"")

type globalOptions struct {
	output  string
	metrics bool
	stdin   *os.File
}

func (o *globalOptions) validate() error {
	switch o.output {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q", o.output)
}

// app is one CLI invocation's wiring of the session stack.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	registry   *prometheus.Registry
	redis      *persistence.Redis
	store      *session.Store
	redirector *session.Redirector
	controller *session.Controller
	guard      *session.Guard
	client     *client.Client
	out        *printer
	stderr     io.Writer
	stdin      *os.File

	stopNotices func()
}

func newApp(ctx context.Context, cfg *config.Config, stdin *os.File, stdout, stderr io.Writer, format string) (*app, error) {
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		out:      newPrinter(stdout, format),
		stderr:   stderr,
		stdin:    stdin,
	}
	metrics := observability.NewMetrics(cfg.Metrics.Namespace, a.registry)

	repo := a.tokenRepository()
	dispatcher := events.NewInMemoryDispatcher(logger)
	readiness := session.NewReadiness()
	slot := session.NewTokenSlot(repo, logger)
	a.store = session.NewStore()
	a.redirector = session.NewRedirector(session.NavigatorFunc(a.navigate), cfg.API.LoginPath, dispatcher, metrics, logger)

	gw := gateway.New(gateway.Options{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.RequestTimeout(),
		Slot:       slot,
		Readiness:  readiness,
		Redirector: a.redirector,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	a.client = client.New(gw, a.store, logger)

	notices := service.NewNoticeService(dispatcher, newNoticePrinter(stderr), logger)
	a.stopNotices = worker.StartNoticeWorker(notices)

	realClock := clock.Real()
	a.controller = session.NewController(session.Dependencies{
		Codec:      auth.NewCodec(),
		Slot:       slot,
		Store:      a.store,
		Readiness:  readiness,
		Scheduler:  session.NewScheduler(realClock, cfg.Session.ExpiryGrace()),
		Redirector: a.redirector,
		Login:      a.client,
		Dispatcher: dispatcher,
		Clock:      realClock,
		Metrics:    metrics,
		Logger:     logger,
	})
	a.guard = session.NewGuard(readiness, a.store, slot, a.redirector, logger)

	a.controller.Bootstrap(ctx)
	return a, nil
}

func (a *app) tokenRepository() repository.TokenRepository {
	switch a.cfg.Store.Driver {
	case config.StoreDriverRedis:
		a.redis = persistence.NewRedis(a.cfg.Redis, a.logger)
		return repository.NewRedisTokenRepository(a.redis.Client, a.redis.Key(a.cfg.Store.Key))
	case config.StoreDriverMemory:
		return repository.NewMemoryTokenRepository()
	default:
		return repository.NewFileTokenRepository(a.cfg.Store.FilePath)
	}
}

// navigate is the CLI's login surface: it cannot show a page, so it tells
// the user what to run. It must not call back into the controller.
func (a *app) navigate(target, from string) {
	a.logger.Debug("login redirect", zap.String("target", target), zap.String("from", from))
	if from != "" {
		fmt.Fprintf(a.stderr, "Session required for %q. Run \"docdesk login\" to continue.\n", from)
		return
	}
	fmt.Fprintln(a.stderr, "You are logged out. Run \"docdesk login\" to sign in again.")
}

// session returns the current identity, or nil.
func (a *app) session() *domain.Session {
	return a.controller.Session()
}

// enter passes location through the guard. When the guard redirects and
// stdin is a terminal the user may log in inline and resume.
func (a *app) enter(ctx context.Context, location string) error {
	switch a.guard.Enter(ctx, location) {
	case session.DecisionRender:
		return nil
	case session.DecisionSuspend:
		return errors.New("session is not ready")
	}
	if !isTerminal(a.stdin) {
		return errLoginRequired
	}

	username, err := promptLine(a.stdin, a.stderr, "Username: ")
	if err != nil {
		return err
	}
	password, err := readLoginPassword("", a.stdin, a.stderr)
	if err != nil {
		return err
	}
	if _, err := a.controller.Login(ctx, username, password); err != nil {
		return err
	}
	if returnTo := a.redirector.ReturnTo(); returnTo != "" {
		fmt.Fprintf(a.stderr, "Resuming %s\n", returnTo)
	}
	if a.guard.Decision() != session.DecisionRender {
		return errLoginRequired
	}
	return nil
}

func (a *app) close() {
	a.guard.Close()
	a.controller.Close()
	a.stopNotices()
	if a.redis != nil {
		a.redis.Close()
	}
	_ = a.logger.Sync()
}

// writeCounters prints every gathered counter sample as name{labels} value.
func (a *app) writeCounters(w io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, pair := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", pair.GetName(), pair.GetValue()))
			}
			sort.Strings(labels)
			fmt.Fprintf(w, "%s{%s} %g\n", family.GetName(), strings.Join(labels, ","), metric.GetCounter().GetValue())
		}
	}
	return nil
}

// run builds the app for cmd, passes protected commands through the guard
// and tears everything down afterwards.
func (o *globalOptions) run(cmd *cobra.Command, protected bool, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg, o.stdin, cmd.OutOrStdout(), cmd.ErrOrStderr(), o.output)
	if err != nil {
		return err
	}
	defer a.close()

	if protected {
		location := cmd.CommandPath()
		if err := a.enter(ctx, location); err != nil {
			return err
		}
		defer a.guard.Leave()
	}

	runErr := fn(ctx, a)
	if o.metrics {
		if err := a.writeCounters(cmd.ErrOrStderr()); err != nil {
			a.logger.Warn("gather metrics", zap.Error(err))
		}
	}
	return runErr
}

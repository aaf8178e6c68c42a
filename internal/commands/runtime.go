package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/auth"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/config"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/ledger"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/logging"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/store"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/study"
)

var (
	// Verbose enables debug logging. Bound to the root --verbose flag.
	Verbose bool

	// Ephemeral keeps usage in memory for this run only. Bound to the root --ephemeral flag.
	Ephemeral bool
)

// AppVersion is set by main.go before command execution. The TUI reads it.
var AppVersion = "0.0.0-dev"

// runtime is everything a command needs, built from the config file.
type runtime struct {
	cfg      *config.Config
	store    store.Store
	ledger   *ledger.Ledger
	provider *auth.DeviceProvider
	gate     *auth.Gate
	study    *study.Orchestrator
	logs     io.Closer
}

// openRuntime is swapped in tests.
var openRuntime = openDefaultRuntime

func openDefaultRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", config.GetConfigPath(), err)
	}

	logs, err := logging.Init(logging.Options{Dir: config.LogDir(), Verbose: Verbose})
	if err != nil {
		return nil, err
	}

	var st store.Store
	if Ephemeral {
		st = store.NewMemory()
	} else {
		st, err = store.NewSQLite(cfg.CacheFile())
		if err != nil {
			logs.Close()
			return nil, err
		}
	}

	provider := auth.NewDeviceProvider(cfg.IdentityBaseURL(), cfg.RequestTimeout())
	rt, err := newRuntime(cfg, st, auth.NewConfigSessionStore(), provider)
	if err != nil {
		st.Close()
		logs.Close()
		return nil, err
	}
	rt.logs = logs
	return rt, nil
}

// newRuntime wires the services on top of an opened store.
func newRuntime(cfg *config.Config, st store.Store, sessions auth.SessionStore, provider *auth.DeviceProvider) (*runtime, error) {
	l := ledger.New(st)

	gate, err := auth.NewGate(provider, sessions, l)
	if err != nil {
		return nil, err
	}

	client := study.NewClient(cfg.APIURL, cfg.SummarizerURL, cfg.RequestTimeout())
	orch := study.NewOrchestrator(gate, l, client, tipsProvider(cfg), cfg.Tips.MaxTokens)

	return &runtime{
		cfg:      cfg,
		store:    st,
		ledger:   l,
		provider: provider,
		gate:     gate,
		study:    orch,
	}, nil
}

// tipsProvider picks the remote tips endpoint when configured. Relative
// endpoints are resolved against the API URL.
func tipsProvider(cfg *config.Config) study.TipsProvider {
	endpoint := strings.TrimSpace(cfg.Tips.Endpoint)
	if endpoint == "" {
		return study.NewStaticTips()
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = strings.TrimSuffix(cfg.APIURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
	}
	return study.NewRemoteTips(endpoint, cfg.RequestTimeout())
}

func (r *runtime) Close() error {
	var errs []error
	if r.store != nil {
		errs = append(errs, r.store.Close())
	}
	if r.logs != nil {
		errs = append(errs, r.logs.Close())
	}
	return errors.Join(errs...)
}

// requireReady returns the session when the user is signed in and has
// accepted the terms.
func (r *runtime) requireReady(ctx context.Context) (*auth.Session, error) {
	s, err := r.gate.Require()
	if err != nil {
		return nil, fmt.Errorf("%w. Run 'vikal login' first", err)
	}

	accepted, err := r.ledger.TermsAccepted(ctx)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, fmt.Errorf("terms not accepted. Run 'vikal terms' to read them and 'vikal terms --accept' to continue")
	}
	slog.Debug("session ready", "user_id", s.UserID)
	return s, nil
}

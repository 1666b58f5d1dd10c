package snapcal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/snapcal/snapcal-cli/internal/api"
	"github.com/snapcal/snapcal-cli/internal/app"
	"github.com/snapcal/snapcal-cli/internal/cache"
	"github.com/snapcal/snapcal-cli/internal/config"
	"github.com/snapcal/snapcal-cli/internal/session"
	"github.com/snapcal/snapcal-cli/internal/storage"
	"github.com/snapcal/snapcal-cli/internal/tracker"
)

// clientApp bundles everything a command needs after bootstrap.
type clientApp struct {
	cfg     *config.Config
	api     *api.Client
	session *session.Store
	tracker *tracker.Tracker
	state   *storage.Store
	db      *sql.DB
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return app.DefaultConfigPath()
}

func resolveStatePath(cfg *config.Config) (string, error) {
	if statePath != "" {
		return statePath, nil
	}
	if cfg.StatePath != "" {
		return cfg.StatePath, nil
	}
	return app.DefaultStatePath()
}

// withApp boots the full client: config, local state, backend client, and
// the session lifecycle. Commands run against an initialized session.
func withApp(run func(ctx context.Context, rt *clientApp) error) error {
	ctx := context.Background()

	cfgPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}

	dbPath, err := resolveStatePath(cfg)
	if err != nil {
		return err
	}
	if err := app.EnsureStateDir(dbPath); err != nil {
		return err
	}
	sqldb, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := storage.ApplyMigrations(sqldb); err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)
	client := api.New(cfg.BaseURL, log)
	client.HTTPClient.Timeout = cfg.Timeout()
	client.AnalyzeTimeout = cfg.UploadTimeout()

	state := storage.NewStore(sqldb)
	sess := session.NewStore(client, state, func() string { return cfg.TelegramInitData }, log)
	sess.Initialize(ctx)

	rt := &clientApp{
		cfg:     cfg,
		api:     client,
		session: sess,
		tracker: tracker.New(client, sess, cache.New(), log),
		state:   state,
		db:      sqldb,
	}
	return run(ctx, rt)
}

// ensureUser provisions an anonymous account when no session survived
// initialization, so data commands always have an identity to write under.
func ensureUser(ctx context.Context, rt *clientApp) error {
	if rt.session.Authenticated() {
		return nil
	}
	if err := rt.session.ProvisionAnonymous(ctx); err != nil {
		return fmt.Errorf("create anonymous account: %w", err)
	}
	return nil
}

// requireCredential is for commands that must not silently create an
// account, like convert or telegram link.
func requireCredential(rt *clientApp) error {
	if !rt.session.Authenticated() {
		return session.ErrNotAuthenticated
	}
	return nil
}

func parseDateArg(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	if _, err := time.ParseInLocation("2006-01-02", value, time.Local); err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return value, nil
}

func displayName(email, name *string, userType string) string {
	if name != nil && *name != "" {
		return *name
	}
	if email != nil && *email != "" {
		return *email
	}
	return userType
}

func ptrOrDash(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}

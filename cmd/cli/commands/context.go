package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/jakechorley/gift-registry/internal/config"
	"github.com/jakechorley/gift-registry/pkg/clients/gmailclient"
	"github.com/jakechorley/gift-registry/pkg/clients/registryclient"
	"github.com/jakechorley/gift-registry/pkg/clients/sheetsclient"
	"github.com/jakechorley/gift-registry/pkg/core/catalog"
	"github.com/jakechorley/gift-registry/pkg/core/claimcache"
	"github.com/jakechorley/gift-registry/pkg/core/workflow"
	"github.com/jakechorley/gift-registry/pkg/db"
	"github.com/jakechorley/gift-registry/pkg/localstore"
	"github.com/jakechorley/gift-registry/pkg/postgres"
	"github.com/jakechorley/gift-registry/pkg/sheetssql"
	"github.com/jakechorley/gift-registry/pkg/utils"
)

const registryClientTimeout = 30 * time.Second

// Mailer sends exported gift details by email
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// AppContext holds the application dependencies shared across all commands.
// Stores and clients are built on first use so each command only
// authenticates against what it touches.
type AppContext struct {
	Env    string
	Cfg    *config.Config
	Logger *zap.Logger
	Ctx    context.Context

	// Clipboard copies text to the system clipboard
	Clipboard func(text string) error
	// Now is the wall clock used for exports
	Now func() time.Time

	backend    db.GiftStore
	client     db.GiftStore
	mailer     Mailer
	sheets     *sheetsclient.Client
	postgresDB *postgres.DB
	local      *localstore.Store
	catalog    *catalog.Catalog
	cache      *claimcache.Cache
	workflow   *workflow.Workflow
}

// NewAppContext creates an AppContext with system defaults
func NewAppContext(ctx context.Context, env string, cfg *config.Config, logger *zap.Logger) *AppContext {
	return &AppContext{
		Env:       env,
		Cfg:       cfg,
		Logger:    logger,
		Ctx:       ctx,
		Clipboard: clipboard.WriteAll,
		Now:       time.Now,
	}
}

// BackendStore returns the configured backing store (sheets or postgres)
func (app *AppContext) BackendStore() (db.GiftStore, error) {
	if app.backend != nil {
		return app.backend, nil
	}

	switch app.Cfg.Backend {
	case config.BackendPostgres:
		pg, err := app.Postgres()
		if err != nil {
			return nil, err
		}
		app.backend = pg
	case config.BackendSheets:
		sheetsDB, err := app.SheetsStore()
		if err != nil {
			return nil, err
		}
		app.backend = sheetsDB
	default:
		return nil, fmt.Errorf("unknown backend %q", app.Cfg.Backend)
	}

	return app.backend, nil
}

// SheetsStore returns the registry sheet as a store, whatever the backend
func (app *AppContext) SheetsStore() (*db.DB, error) {
	if app.Cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is not configured")
	}

	client, err := app.sheetsClient()
	if err != nil {
		return nil, err
	}

	app.Logger.Info("Connecting to registry sheet",
		zap.String("spreadsheet_id", app.Cfg.SpreadsheetID),
		zap.String("range", app.Cfg.SheetRangeA1()))
	ssqlDB := sheetssql.NewDB(client, app.Cfg.SpreadsheetID, app.Cfg.SheetName, app.Cfg.SheetRange)
	return db.NewDB(ssqlDB), nil
}

// Store returns the store the claiming client talks to: the registry
// endpoint when client.apiURL is set, the backing store otherwise.
func (app *AppContext) Store() (db.GiftStore, error) {
	if app.client != nil {
		return app.client, nil
	}

	if app.Cfg.Client.APIURL != "" {
		app.Logger.Debug("Using registry endpoint", zap.String("api_url", app.Cfg.Client.APIURL))
		app.client = registryclient.NewClient(app.Cfg.Client.APIURL, &http.Client{Timeout: registryClientTimeout})
		return app.client, nil
	}

	store, err := app.BackendStore()
	if err != nil {
		return nil, err
	}
	app.client = store
	return app.client, nil
}

// Postgres connects to the configured database
func (app *AppContext) Postgres() (*postgres.DB, error) {
	if app.postgresDB != nil {
		return app.postgresDB, nil
	}
	if app.Cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("databaseURL is not configured")
	}

	app.Logger.Info("Connecting to postgres")
	pg, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	app.postgresDB = pg
	return pg, nil
}

// Workflow returns the claim workflow over the client store and the
// device-local claim cache
func (app *AppContext) Workflow() (*workflow.Workflow, error) {
	if app.workflow != nil {
		return app.workflow, nil
	}

	store, err := app.Store()
	if err != nil {
		return nil, err
	}

	cacheDir, err := app.Cfg.CacheDir(app.Env)
	if err != nil {
		return nil, err
	}
	app.Logger.Debug("Opening claim cache", zap.String("dir", cacheDir))
	app.local, err = localstore.Open(cacheDir, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open claim cache: %w", err)
	}

	app.catalog = catalog.New(store, app.Logger)
	app.cache = claimcache.New(app.local, store, app.Logger)
	app.workflow = workflow.New(app.catalog, store, app.cache, app.Logger)
	return app.workflow, nil
}

// Mailer returns a Gmail client authorised through the OAuth flow
func (app *AppContext) Mailer() (Mailer, error) {
	if app.mailer != nil {
		return app.mailer, nil
	}
	if app.Cfg.Email.Sender == "" {
		return nil, fmt.Errorf("email.sender is not configured")
	}

	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	token := app.sheetsToken()
	if token == nil {
		oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
		if err != nil {
			return nil, err
		}
		tokens, err := utils.DefaultTokenStore()
		if err != nil {
			return nil, err
		}
		token, err = utils.GetTokenWithFlow(app.Ctx, oauthConfig, tokens, app.Env, app.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to get oauth token: %w", err)
		}
	}

	app.Logger.Info("Initializing gmail client")
	client, err := gmailclient.NewClient(app.Ctx, oauthCfg, token, app.Cfg.Email.Sender)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	app.mailer = client
	return client, nil
}

// Close releases whatever the commands opened
func (app *AppContext) Close() {
	if app.catalog != nil {
		app.catalog.Close()
	}
	if app.local != nil {
		if err := app.local.Close(); err != nil {
			app.Logger.Warn("Failed to close claim cache", zap.Error(err))
		}
	}
	if app.postgresDB != nil {
		app.postgresDB.Close()
	}
}

func (app *AppContext) sheetsClient() (*sheetsclient.Client, error) {
	if app.sheets != nil {
		return app.sheets, nil
	}

	var err error
	switch app.Cfg.Auth {
	case config.AuthOAuth:
		app.Logger.Info("Initializing sheets client (oauth)")
		oauthCfg, loadErr := config.LoadOAuthClientWithEnv(app.Env)
		if loadErr != nil {
			return nil, fmt.Errorf("failed to load OAuth client config: %w", loadErr)
		}
		tokens, tokenErr := utils.DefaultTokenStore()
		if tokenErr != nil {
			return nil, tokenErr
		}
		app.sheets, err = sheetsclient.NewOAuthClient(app.Ctx, oauthCfg, tokens, app.Env, app.Logger)
	default:
		app.Logger.Info("Initializing sheets client (service account)")
		credentials, credErr := config.LoadServiceAccountJSON(app.Cfg)
		if credErr != nil {
			return nil, credErr
		}
		app.sheets, err = sheetsclient.NewServiceAccountClient(app.Ctx, credentials)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return app.sheets, nil
}

func (app *AppContext) sheetsToken() *oauth2.Token {
	if app.sheets == nil {
		return nil
	}
	return app.sheets.Token()
}

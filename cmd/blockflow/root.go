package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/blockflow/config"
	"github.com/kbukum/blockflow/logger"
	"github.com/kbukum/blockflow/observability"
	"github.com/kbukum/blockflow/storage"
	"github.com/kbukum/blockflow/validation"
	"github.com/kbukum/blockflow/workspace"

	// Snapshot backends register themselves with storage.New.
	_ "github.com/kbukum/blockflow/storage/local"
	_ "github.com/kbukum/blockflow/storage/memory"
	_ "github.com/kbukum/blockflow/storage/redis"
)

var outputFormats = []string{"text", "json", "yaml"}

// app carries the state shared by every subcommand.
type app struct {
	configFile  string
	envFile     string
	workspaceID string
	output      string

	cfg     *config.Config
	log     *logger.Logger
	metrics *observability.Metrics
	store   storage.Store
	manager *workspace.Manager
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "blockflow",
		Short: "Edit, validate and serve block pipelines",
		Long: `blockflow manages the block canvases of an ML pipeline workspace.
Each stage (preprocessing, training, performance, predicting) holds linked
blocks that must form a single start-to-end chain before the stage passes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.closeStore(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./config.yml)")
	flags.StringVar(&a.envFile, "env-file", "", "env file (default ./.env)")
	flags.StringVarP(&a.workspaceID, "workspace", "w", "", "workspace id (default from config)")
	flags.StringVarP(&a.output, "output", "o", "text", "output format: text, json or yaml")

	root.AddCommand(
		newServeCmd(a),
		newBlocksCmd(a),
		newLinkCmd(a),
		newUnlinkCmd(a),
		newChainsCmd(a),
		newPaletteCmd(a),
		newValidateCmd(a),
		newProgressCmd(a),
		newCatalogCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads configuration and logging. Storage is opened on first use.
func (a *app) setup() error {
	if err := validation.New().OneOf("output", a.output, outputFormats).Validate(); err != nil {
		return err
	}

	var opts []config.LoaderOption
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if a.envFile != "" {
		opts = append(opts, config.WithEnvFile(a.envFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.workspaceID == "" {
		a.workspaceID = cfg.DefaultWorkspace
	}

	a.log = logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(a.log)
	logger.RegisterDefaults("workspace", "storage", "server")
	return nil
}

// openStore builds the configured backend behind a circuit breaker and
// the workspace manager on top of it.
func (a *app) openStore() error {
	if a.manager != nil {
		return nil
	}
	log := logger.Get("storage")
	store, err := storage.New(a.cfg.Storage, log)
	if err != nil {
		return err
	}
	a.store = storage.NewGuarded(store, a.cfg.Storage.Breaker, log)
	a.manager = workspace.NewManager(
		workspace.WithStorage(a.store, a.cfg.Storage.Namespace),
		workspace.WithLogger(logger.Get("workspace")),
		workspace.WithMetrics(a.metrics),
		workspace.WithRetry(a.cfg.Storage.Retry),
	)
	return nil
}

func (a *app) closeStore(context.Context) error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	a.manager = nil
	return err
}

// workspace opens the selected workspace.
func (a *app) workspace(ctx context.Context) (*workspace.Workspace, error) {
	if err := a.openStore(); err != nil {
		return nil, err
	}
	return a.manager.Get(ctx, a.workspaceID)
}

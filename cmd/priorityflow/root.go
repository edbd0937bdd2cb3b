package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"priorityflow/internal/config"
	"priorityflow/internal/logging"
	"priorityflow/internal/notify"
	"priorityflow/internal/priority"
	"priorityflow/internal/service"
	"priorityflow/internal/storage"
)

// app bundles everything a command needs after bootstrap.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *storage.SQLiteStorage
	tasks  *service.TaskService
	digest *service.DigestService
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.OpenSQLite(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	engine := priority.NewEngine(priority.WithDaysWindow(cfg.Priority.DaysWindow))
	tasks := service.NewTaskService(store, engine, cfg.Priority.TopN)
	digest := service.NewDigestService(tasks, notify.NewService(cfg))

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		tasks:  tasks,
		digest: digest,
	}, nil
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "priorityflow",
		Short:         "Personal task planner with priority scoring and WhatsApp commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "priorityflow.toml", "path to the config file")

	root.AddCommand(
		newServeCommand(&configPath),
		newDigestCommand(&configPath),
		newTaskCommand(&configPath),
		newFlowCommand(&configPath),
	)
	return root
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gridworkspaces/internal/dbconn"
	"gridworkspaces/internal/diagramconfig"
	"gridworkspaces/internal/lifecycle"
	"gridworkspaces/internal/server"
	"gridworkspaces/internal/workspace"
)

const shutdownTimeout = 15 * time.Second

var (
	savePassword   bool
	deletePassword bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workspace HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the workspace store schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create a workspaces config from an exported JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <config-id>",
	Short: "Print a workspaces config as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, importCmd, exportCmd)
	// Subcommands parse with their own flag sets, so the root's aliases
	// must reach every one of them.
	rootCmd.SetGlobalNormalizationFunc(aliasNormalizer(configFlagAliases))

	addPasswordFlagAliases(migrateCmd)
	migrateCmd.Flags().BoolVar(&savePassword, "save-password", false, "store the configured database password in the OS keyring")
	migrateCmd.Flags().BoolVar(&deletePassword, "delete-password", false, "remove the database password from the OS keyring")
	migrateCmd.MarkFlagsMutuallyExclusive("save-password", "delete-password")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := workspace.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer repo.Close()

	diagrams, err := newDiagramClient(ctx)
	if err != nil {
		return err
	}
	srv := server.New(lifecycle.NewService(repo, diagrams, logger), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Listen) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch {
	case savePassword:
		if err := dbconn.SavePassword(cfg.Database); err != nil {
			return err
		}
		fmt.Fprintf(out, "password saved for %s\n", cfg.Database.ProfileName())
	case deletePassword:
		if err := dbconn.DeletePassword(cfg.Database); err != nil {
			return err
		}
		fmt.Fprintf(out, "password removed for %s\n", cfg.Database.ProfileName())
		return nil
	}

	repo, err := workspace.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer repo.Close()
	fmt.Fprintf(out, "%s schema is up to date\n", repo.Dialect().Name)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	doc, result, err := workspace.ReadExport(args[0])
	if err != nil {
		return err
	}
	svc, closeFn, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	created, dropped, err := svc.ImportConfig(cmd.Context(), doc)
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	for _, w := range result.Warnings {
		fmt.Fprintf(errOut, "warning: %s\n", w)
	}
	for _, id := range dropped {
		fmt.Fprintf(errOut, "warning: diagram config %s not imported\n", id)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported config %s: %d workspaces, %d panels\n",
		created.ID, result.WorkspacesImported, result.PanelsImported)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	wc, err := svc.GetConfig(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	data, err := workspace.Export(wc)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func openService(ctx context.Context) (*lifecycle.Service, func(), error) {
	repo, err := workspace.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	diagrams, err := newDiagramClient(ctx)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	return lifecycle.NewService(repo, diagrams, logger), func() { repo.Close() }, nil
}

// newDiagramClient talks to the configured diagram configuration service, or
// keeps diagram configurations in memory when none is configured.
func newDiagramClient(ctx context.Context) (diagramconfig.Client, error) {
	dc := cfg.DiagramConfig
	if dc.URL == "" {
		logger.Info("no diagram config service configured; keeping diagram configs in memory")
		return diagramconfig.NewMemoryClient(), nil
	}
	logger.Info("using diagram config service", zap.String("url", dc.URL))
	return diagramconfig.NewHTTPClient(ctx, diagramconfig.Options{
		BaseURL:  dc.URL,
		Timeout:  dc.Timeout,
		RetryMax: dc.RetryMax,
		OAuth:    dc.OAuth,
		Logger:   logger,
	})
}

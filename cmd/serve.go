package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve rendered pages over HTTP",
	Long: `Serve pages, sections and the JSON API over HTTP.

With --watch the content directory is reloaded when it changes; with
--live-reload open pages are also told to refresh.

Examples:
  sections serve                       # Serve on localhost:8080
  sections serve -p 3000 --live-reload # Develop with live reload`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("watch", false, "Reload content when files change")
	serveCmd.Flags().Bool("live-reload", false, "Reload open pages when content changes")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("development.watch", serveCmd.Flags().Lookup("watch"))
	viper.BindPFlag("development.live_reload", serveCmd.Flags().Lookup("live-reload"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, logger, err := loadContainer(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	if err := container.Watch(ctx); err != nil {
		return fmt.Errorf("failed to watch %s: %w", container.Config.Store.ContentDir, err)
	}

	logger.Info(ctx, "starting server",
		"addr", container.Config.Addr(),
		"driver", container.Config.Store.Driver,
		"live_reload", container.Config.Development.LiveReload)
	return container.Server().Start(ctx)
}

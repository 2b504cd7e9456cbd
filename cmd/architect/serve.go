package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/architect/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the dashboard's projects, assistant and panels as REST endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides HTTP_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.HTTPPort
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(server.Config{Port: port}, server.Deps{
		Store:      a.store,
		Gateway:    a.gateway,
		Dispatcher: a.dispatcher,
		Panels:     a.panels,
		Wizards:    a.wizards,
		Notes:      a.notes,
		Metrics:    a.metrics,
	}, server.WithLogger(a.logger))

	return srv.Start(ctx)
}

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/magroup/magnus/internal/auth"
	"github.com/magroup/magnus/internal/chat"
	"github.com/magroup/magnus/internal/config"
	"github.com/magroup/magnus/internal/connector"
	"github.com/magroup/magnus/internal/dashboard"
	"github.com/magroup/magnus/internal/db"
	"github.com/magroup/magnus/internal/kb"
	"github.com/magroup/magnus/internal/llm"
	"github.com/magroup/magnus/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the knowledge bot server",
	Long:  `Starts the MAGnus HTTP server with the chat dashboard, login, and the knowledge base API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		conn, err := connector.New(cfg)
		if err != nil {
			return fmt.Errorf("creating connector: %w", err)
		}

		provider, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}

		dbPath := filepath.Join(cfg.Server.DataDir, "magnus.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		kbSvc := kb.New(conn, database, cfg.Knowledge)
		engine := chat.NewEngine(chat.NewStore(database), kbSvc, provider,
			cfg.LLM.Model, retrievalOptions(cfg.Retrieval))
		authSvc := auth.New(cfg.Auth)

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			DataDir:  cfg.Server.DataDir,
			AllowAll: cfg.Server.AllowAll,
		}, database)

		dash := dashboard.New(engine, kbSvc, authSvc)
		dash.RegisterRoutes(srv.Router())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Load the knowledge base up front so the first question does not
		// pay the fetch latency.
		if _, err := kbSvc.Refresh(ctx, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: initial knowledge base load failed: %v\n", err)
			fmt.Fprintf(os.Stderr, "The next chat turn will retry.\n")
		}

		if cfg.Knowledge.Watch && cfg.Connector == config.ConnectorLocal {
			local, ok := conn.(*connector.Local)
			if ok {
				go func() {
					if err := kbSvc.Watch(ctx, local.Root()); err != nil && ctx.Err() == nil {
						fmt.Fprintf(os.Stderr, "Warning: filesystem watch stopped: %v\n", err)
					}
				}()
			}
		}

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		stats := kbSvc.Stats()
		fmt.Fprintf(os.Stderr, "magnus server v%s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  Connector: %s\n", conn.Name())
		fmt.Fprintf(os.Stderr, "  Documents loaded: %d\n", stats.DocumentCount)

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override the configured port")
	rootCmd.AddCommand(serveCmd)
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/magroup/magnus/internal/connector"
	"github.com/magroup/magnus/internal/db"
	"github.com/magroup/magnus/internal/kb"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Inspect the knowledge base documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the documents the connector serves",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		conn, err := connector.New(cfg)
		if err != nil {
			return fmt.Errorf("creating connector: %w", err)
		}

		kbSvc := kb.New(conn, nil, cfg.Knowledge)
		if err := refreshWithProgress(cmd.Context(), kbSvc, conn.Name()); err != nil {
			return err
		}

		docs, _ := kbSvc.Snapshot()
		sort.Slice(docs, func(i, j int) bool {
			if docs[i].Priority != docs[j].Priority {
				return docs[i].Priority < docs[j].Priority
			}
			return docs[i].Name < docs[j].Name
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PRIORITY\tSIZE\tNAME")
		for _, d := range docs {
			fmt.Fprintf(w, "%d\t%d\t%s\n", d.Priority, len(d.Text), d.Name)
		}
		w.Flush()
		fmt.Fprintf(os.Stderr, "\n%d documents from %s\n", len(docs), conn.Name())
		return nil
	},
}

var docsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload the knowledge base and record the load",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		conn, err := connector.New(cfg)
		if err != nil {
			return fmt.Errorf("creating connector: %w", err)
		}

		if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		database, err := db.Open(filepath.Join(cfg.Server.DataDir, "magnus.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		kbSvc := kb.New(conn, database, cfg.Knowledge)
		if err := refreshWithProgress(cmd.Context(), kbSvc, conn.Name()); err != nil {
			return err
		}

		stats := kbSvc.Stats()
		fmt.Printf("%d documents loaded from %s\n", stats.DocumentCount, stats.Connector)
		return nil
	},
}

var docsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the connector credentials and reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		conn, err := connector.New(cfg)
		if err != nil {
			return fmt.Errorf("creating connector: %w", err)
		}

		status, err := conn.TestConnection(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s connector: %w", conn.Name(), err)
		}
		fmt.Printf("%s: %s\n", conn.Name(), status)
		return nil
	},
}

func init() {
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsRefreshCmd)
	docsCmd.AddCommand(docsCheckCmd)
	rootCmd.AddCommand(docsCmd)
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magroup/magnus/internal/chat"
	"github.com/magroup/magnus/internal/connector"
	"github.com/magroup/magnus/internal/db"
	"github.com/magroup/magnus/internal/kb"
	"github.com/magroup/magnus/internal/llm"
	"github.com/magroup/magnus/internal/progress"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the knowledge base a one-shot question",
	Long:  `Loads the knowledge base, answers a single question on the command line, and streams the answer to stdout.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		conn, err := connector.New(cfg)
		if err != nil {
			return fmt.Errorf("creating connector: %w", err)
		}

		provider, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}

		// One-shot sessions are kept in memory only.
		database, err := db.OpenMemory()
		if err != nil {
			return fmt.Errorf("opening session store: %w", err)
		}
		defer database.Close()

		ctx := cmd.Context()
		kbSvc := kb.New(conn, nil, cfg.Knowledge)
		if err := refreshWithProgress(ctx, kbSvc, conn.Name()); err != nil {
			return err
		}

		store := chat.NewStore(database)
		engine := chat.NewEngine(store, kbSvc, provider, cfg.LLM.Model, retrievalOptions(cfg.Retrieval))

		sess, err := store.CreateSession(ctx)
		if err != nil {
			return err
		}
		// Skip the category menu: a CLI question is always a question.
		if err := store.UpdateSession(ctx, sess.ID, chat.StateCategorized, "question"); err != nil {
			return err
		}

		_, err = engine.HandleMessage(ctx, sess.ID, question, func(delta string) error {
			_, werr := fmt.Fprint(os.Stdout, delta)
			return werr
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

// refreshWithProgress loads the knowledge base with a terminal progress
// bar.
func refreshWithProgress(ctx context.Context, kbSvc *kb.Service, connectorName string) error {
	fmt.Fprintf(os.Stderr, "Loading documents from %s...\n", connectorName)
	reporter := progress.NewReporter()
	started := false
	_, err := kbSvc.Refresh(ctx, func(processed, total int, current string) {
		if !started {
			reporter.Start(total)
			started = true
		}
		reporter.Update(processed, current)
	})
	if started {
		reporter.Finish()
	}
	if err != nil {
		return fmt.Errorf("loading knowledge base: %w", err)
	}
	return nil
}

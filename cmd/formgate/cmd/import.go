package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/calyx-health/formgate/internal/core/db"
	"github.com/calyx-health/formgate/internal/types"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <form.json>",
	Short: "Validate a form definition and store it",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read form file: %w", err)
	}
	var form types.Form
	if err := json.Unmarshal(data, &form); err != nil {
		return fmt.Errorf("failed to parse form file: %w", err)
	}
	if form.ID == "" {
		form.ID = types.NewFormID()
	}

	conn, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	queries, err := db.LoadQueries(conn)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}
	store, err := db.NewFormStore(queries)
	if err != nil {
		return err
	}

	if err := store.SaveForm(form); err != nil {
		return err
	}

	fmt.Printf("imported form %s (%d questions)\n", form.ID, len(form.Questions))
	return nil
}

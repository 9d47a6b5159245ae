package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/calyx-health/formgate/internal/answers"
	"github.com/calyx-health/formgate/internal/core/auth"
	"github.com/calyx-health/formgate/internal/core/config"
	"github.com/calyx-health/formgate/internal/core/db"
	"github.com/calyx-health/formgate/internal/evaluator"
	"github.com/calyx-health/formgate/internal/types"
	"github.com/calyx-health/formgate/internal/visibility"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <form-id>",
	Short: "Run one evaluation pass and print the visibility map",
	Long: `Loads a stored form definition, seeds the answer map from a JSON file,
runs a single evaluation pass against the configured evaluation service, and
prints the resulting per-question visibility. Useful for verifying rule
behavior against a known answer set without mounting the form.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

var answersFile string

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&answersFile, "answers", "", "JSON file of question_id -> answer value")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}
	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}

	formID, err := types.ParseFormID(args[0])
	if err != nil {
		return fmt.Errorf("invalid form id: %w", err)
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
	formStore, err := db.NewFormStore(queries)
	if err != nil {
		return err
	}
	form, err := formStore.LoadForm(formID)
	if err != nil {
		return err
	}

	answerMap := answers.NewMap()
	if answersFile != "" {
		data, err := os.ReadFile(answersFile)
		if err != nil {
			return fmt.Errorf("failed to read answers file: %w", err)
		}
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse answers file: %w", err)
		}
		for id, v := range raw {
			answerMap.Set(types.QuestionID(id), v)
		}
	}

	opts := []evaluator.Option{evaluator.WithTimeout(cfg.RequestTimeout)}
	if cfg.APIKey != "" {
		secrets, err := config.HMACSecrets()
		if err != nil {
			return fmt.Errorf("failed to load HMAC secrets: %w", err)
		}
		signer, err := auth.NewSigner(cfg.APIKey, secrets)
		if err != nil {
			return fmt.Errorf("failed to create request signer: %w", err)
		}
		opts = append(opts, evaluator.WithSigner(signer))
	}
	client := evaluator.NewClient(cfg.EvaluatorURL, opts...)

	store := visibility.NewStore(form.Questions, answerMap, client, slog.Default())
	store.Refresh(ctx)

	for _, q := range form.Questions {
		state := "visible"
		if !store.IsQuestionVisible(q.ID) {
			state = "hidden"
		}
		fmt.Printf("%-40s %s\n", q.ID, state)
	}
	return nil
}

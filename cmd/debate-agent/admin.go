package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/debateprogram/realtime/internal/api"
	"github.com/debateprogram/realtime/internal/config"
)

var (
	reviewQuestion int
	reviewUser     int
	reviewAnswer   string

	deleteDeclaration int
	deleteUser        int
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Answer a user's question",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		err = client.ReviewQuestion(cmd.Context(), api.QuestionReview{
			QuestionCode: reviewQuestion,
			UserCode:     reviewUser,
			Answer:       reviewAnswer,
		})
		if err != nil {
			return err
		}

		fmt.Printf("question %d answered\n", reviewQuestion)
		return nil
	},
}

var deleteReportCmd = &cobra.Command{
	Use:   "delete-report",
	Short: "Delete a user report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		if err := client.DeleteDeclaration(cmd.Context(), deleteDeclaration, deleteUser); err != nil {
			return err
		}

		fmt.Printf("report %d deleted\n", deleteDeclaration)
		return nil
	},
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List user reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		declarations, err := client.ListDeclarations(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(declarations, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		if len(declarations) == 0 {
			fmt.Println("no reports")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tUSER\tNICKNAME\tREASON")
		for _, d := range declarations {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", d.DeclarationCode, d.UserCode, d.Nickname, d.DeclarationReason)
		}
		return w.Flush()
	},
}

func init() {
	reviewCmd.Flags().IntVar(&reviewQuestion, "question", 0, "Question code")
	reviewCmd.Flags().IntVar(&reviewUser, "user", 0, "Code of the user who asked")
	reviewCmd.Flags().StringVar(&reviewAnswer, "answer", "", "Answer text")
	for _, name := range []string{"question", "user", "answer"} {
		_ = reviewCmd.MarkFlagRequired(name)
	}

	deleteReportCmd.Flags().IntVar(&deleteDeclaration, "declaration", 0, "Report (declaration) code")
	deleteReportCmd.Flags().IntVar(&deleteUser, "user", 0, "Code of the reporting user")
	_ = deleteReportCmd.MarkFlagRequired("declaration")
	_ = deleteReportCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(reviewCmd, deleteReportCmd, reportsCmd)
}

// newAPIClient builds a REST client from the api section of the config file.
// Admin commands need no realtime or database settings, so only defaults apply.
func newAPIClient() (*api.Client, error) {
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(os.Stderr, cfg.Log)

	return api.NewClient(
		cfg.API.RestURL,
		cfg.API.Token,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	), nil
}

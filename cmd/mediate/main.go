package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arnavshah/odysai-api-go/pkg/mediator"
	"github.com/arnavshah/odysai-api-go/pkg/models"
	"github.com/arnavshah/odysai-api-go/pkg/plans"
	"github.com/arnavshah/odysai-api-go/pkg/scoring"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "mediate",
		Short:        "Run preference mediation and plan scoring on JSON files",
		SilenceUsage: true,
	}
	root.AddCommand(newConflictsCommand(), newScoreCommand(), newRankCommand())
	return root
}

func newConflictsCommand() *cobra.Command {
	var membersPath string
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Print the conflict report for a list of members",
		Example: `  mediate conflicts --members members.json
  cat members.json | mediate conflicts --members -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var members []models.Member
			if err := readJSON(cmd, membersPath, &members); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), mediator.BuildConflictReport(members))
		},
	}
	cmd.Flags().StringVar(&membersPath, "members", "", "members JSON file, - for stdin")
	_ = cmd.MarkFlagRequired("members")
	return cmd
}

func newScoreCommand() *cobra.Command {
	var membersPath, plansPath, tablesPath string
	cmd := &cobra.Command{
		Use:     "score",
		Short:   "Attach group fit scores to plan packages",
		Example: `  mediate score --members members.json --plans plans.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var members []models.Member
			if err := readJSON(cmd, membersPath, &members); err != nil {
				return err
			}
			var packages []models.PlanPackage
			if err := readJSON(cmd, plansPath, &packages); err != nil {
				return err
			}
			if _, err := plans.Validate(packages); err != nil {
				return err
			}

			scorer, err := newScorer(tablesPath)
			if err != nil {
				return err
			}
			for i := range packages {
				fit := scorer.ScorePlan(packages[i], members)
				packages[i].FitScore = &fit
			}
			return writeJSON(cmd.OutOrStdout(), packages)
		},
	}
	cmd.Flags().StringVar(&membersPath, "members", "", "members JSON file, - for stdin")
	cmd.Flags().StringVar(&plansPath, "plans", "", "plan packages JSON file")
	cmd.Flags().StringVar(&tablesPath, "tables", "", "YAML keyword tables replacing the defaults")
	_ = cmd.MarkFlagRequired("members")
	_ = cmd.MarkFlagRequired("plans")
	return cmd
}

func newRankCommand() *cobra.Command {
	var membersPath, candidatesPath, tablesPath string
	cmd := &cobra.Command{
		Use:     "rank",
		Short:   "Rank candidate replacement slots by group fit",
		Example: `  mediate rank --members members.json --candidates slots.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var members []models.Member
			if err := readJSON(cmd, membersPath, &members); err != nil {
				return err
			}
			var candidates []models.ActivitySlot
			if err := readJSON(cmd, candidatesPath, &candidates); err != nil {
				return err
			}
			scorer, err := newScorer(tablesPath)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), scorer.RankAlternatives(candidates, members))
		},
	}
	cmd.Flags().StringVar(&membersPath, "members", "", "members JSON file, - for stdin")
	cmd.Flags().StringVar(&candidatesPath, "candidates", "", "candidate slots JSON file")
	cmd.Flags().StringVar(&tablesPath, "tables", "", "YAML keyword tables replacing the defaults")
	_ = cmd.MarkFlagRequired("members")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}

func newScorer(tablesPath string) (*scoring.Scorer, error) {
	if tablesPath == "" {
		return scoring.NewScorer(), nil
	}
	return scoring.LoadTables(tablesPath)
}

func readJSON(cmd *cobra.Command, path string, v any) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

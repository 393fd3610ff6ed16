// cmd/tools/fund-catalog/commands.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"lead-qualifier/internal/catalog"
	"lead-qualifier/internal/common/config"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/models"
	"lead-qualifier/internal/qualifier/eligibility"
	"lead-qualifier/internal/qualifier/profile"
	"lead-qualifier/internal/qualifier/scoring"
	"lead-qualifier/pkg/registry"

	"github.com/spf13/cobra"
)

func loadSeed(cmd *cobra.Command) (*models.CatalogSeed, error) {
	path, _ := cmd.Flags().GetString("seed")
	return registry.LoadSeed(path)
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the funds in the seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := loadSeed(cmd)
			if err != nil {
				return err
			}
			activeOnly, _ := cmd.Flags().GetBool("active")
			return printFunds(cmd.OutOrStdout(), seed.Fundos, activeOnly)
		},
	}
	cmd.Flags().BoolP("active", "a", false, "Only active funds")
	return cmd
}

func printFunds(w io.Writer, funds []models.Fund, activeOnly bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOME\tTIPO\tATIVO")
	for _, f := range funds {
		if activeOnly && !f.Ativo {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", f.ID, f.Nome, f.Tipo, f.Ativo)
	}
	return tw.Flush()
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the seed file shape and every fund record",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := loadSeed(cmd)
			if err != nil {
				return err
			}
			problems := validateFunds(seed.Fundos)
			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintln(out, p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d invalid fund(s)", len(problems))
			}
			fmt.Fprintf(out, "Seed %s is valid: %d funds\n", seed.Versao, len(seed.Fundos))
			return nil
		},
	}
}

func validateFunds(funds []models.Fund) []string {
	c := catalog.New(catalog.NewMemoryStore(), logger.NewNoOpLogger())
	var problems []string
	for _, f := range funds {
		if err := c.Validate(f); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", f.ID, err))
		}
	}
	return problems
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert every seed fund into the configured catalog backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := loadSeed(cmd)
			if err != nil {
				return err
			}
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadFromFile(cfgPath)
			if err != nil {
				return err
			}

			ctx := context.Background()
			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			c := catalog.New(store, logger.NewNoOpLogger())
			out := cmd.OutOrStdout()
			for _, f := range seed.Fundos {
				_, created, err := c.Upsert(ctx, f.ID, f.FundSpec)
				if err != nil {
					return fmt.Errorf("%s: %w", f.ID, err)
				}
				verb := "updated"
				if created {
					verb = "created"
				}
				fmt.Fprintf(out, "%-12s %s\n", f.ID, verb)
			}
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "configs/config.yaml", "Path to the service configuration")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Write the configured catalog backend to a seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadFromFile(cfgPath)
			if err != nil {
				return err
			}

			ctx := context.Background()
			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			funds, err := store.List(ctx)
			if err != nil {
				return err
			}
			versao, _ := cmd.Flags().GetString("versao")
			if err := registry.Export(args[0], versao, funds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d funds to %s\n", len(funds), args[0])
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "configs/config.yaml", "Path to the service configuration")
	cmd.Flags().String("versao", registry.SeedVersion, "Seed version to write")
	return cmd
}

func evaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate [submission.json]",
		Short: "Validate, score and evaluate a submission against the seed catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := loadSeed(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var raw map[string]interface{}
			if err := json.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			result, err := evaluate(raw, seed.Fundos)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

func evaluate(raw map[string]interface{}, funds []models.Fund) (models.EligibilityResult, error) {
	log := logger.NewNoOpLogger()
	p, err := profile.NewValidator(log).ValidateRaw(raw)
	if err != nil {
		var verrs profile.ValidationErrors
		if errors.As(err, &verrs) {
			return models.EligibilityResult{}, fmt.Errorf("invalid submission:\n  %s", strings.Join(verrs.Fields(), "\n  "))
		}
		return models.EligibilityResult{}, err
	}

	active := make([]models.Fund, 0, len(funds))
	for _, f := range funds {
		if f.Ativo {
			active = append(active, f)
		}
	}
	return eligibility.NewEngine(log).Evaluate(p, scoring.Aggregate(p), active), nil
}

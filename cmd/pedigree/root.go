package main

import (
	"context"
	"log"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pedigree"
	"github.com/carbocation/pedigree/pedfile"
	"github.com/carbocation/pfx"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	freqDBPath  string
	outPath     string
	seed        int64
	iterations  int
	founderFlag int

	cfg   Config
	table *pedigree.FrequencyTable
)

var rootCmd = &cobra.Command{
	Use:   "pedigree",
	Short: "Genotype inference for autosomal recessive conditions in family pedigrees",
	Long: `pedigree reads a pedigree (JSON, optionally .gz or .zst, local or gs://),
propagates genotype probabilities through it, and can search founder priors
to maximize the likelihood of the observed affected statuses.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = loadConfig(configPath); err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("freqdb") {
			cfg.FrequencyDB = freqDBPath
		}
		if flags.Changed("seed") {
			cfg.Seed = seed
		}
		if flags.Changed("iterations") {
			cfg.Iterations = iterations
		}

		if cfg.FrequencyDB, err = expandHome(cfg.FrequencyDB); err != nil {
			return err
		}
		if cmd.Name() == "import" {
			return nil
		}

		table, err = loadFrequencies(cfg.FrequencyDB)
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML file with optimizer settings")
	pf.StringVar(&freqDBPath, "freqdb", "", "SQLite carrier frequency database (default: built-in table)")
	pf.StringVar(&outPath, "out", "", "Write the resulting pedigree, with probabilities, to this path")

	annealCmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	annealCmd.Flags().IntVar(&iterations, "iterations", 10000, "Maximum annealing steps")
	refineCmd.Flags().IntVar(&founderFlag, "founder", 0, "Refine only this founder ID (default: all founders jointly)")

	freqDBCmd.AddCommand(freqDBImportCmd)
	rootCmd.AddCommand(propagateCmd, annealCmd, refineCmd, freqDBCmd)
}

// loadPedigree opens and propagates the pedigree at path.
func loadPedigree(ctx context.Context, path string) (*pedigree.Pedigree, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	log.Println("Opening pedigree:", path)
	p, err := pedfile.Open(ctx, path, table)
	if err != nil {
		return nil, err
	}
	p.UpdateAllProbabilities()

	log.Printf("Loaded %d individuals for %s (%s)\n", p.Len(), pedigree.ConditionName(p.Condition()), p.Condition())
	return p, nil
}

func finish(p *pedigree.Pedigree) error {
	if err := writeReport(rootCmd.OutOrStdout(), p); err != nil {
		return err
	}
	if outPath == "" {
		return nil
	}

	path, err := expandHome(outPath)
	if err != nil {
		return err
	}
	log.Println("Writing pedigree:", path)
	return pedfile.Write(path, pedfile.FromPedigree(p, true))
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", pfx.Err(err)
	}
	return filepath.Join(usr.HomeDir, path[2:]), nil
}

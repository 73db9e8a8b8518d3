package main

import (
	"errors"
	"log"
	"math/rand"
	"os"
	"os/signal"

	"github.com/carbocation/pedigree"
	"github.com/spf13/cobra"
)

var propagateCmd = &cobra.Command{
	Use:   "propagate FILE",
	Short: "Propagate genotype probabilities and report the likelihood",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPedigree(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return finish(p)
	},
}

var annealCmd = &cobra.Command{
	Use:   "anneal FILE",
	Short: "Search founder priors by simulated annealing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		p, err := loadPedigree(ctx, args[0])
		if err != nil {
			return err
		}

		a := pedigree.NewAnnealer(p, rand.New(rand.NewSource(cfg.Seed)), cfg.Anneal)
		if len(a.Candidates()) == 0 {
			log.Println("No founders are free to optimize")
			return finish(p)
		}

		start := p.NegativeLogLikelihood()
		best := a.Run(ctx, cfg.Iterations)
		log.Printf("Annealing %s after %d iterations (%d accepted): NLL %.6f -> %.6f (best %.6f), temperature %.6g\n",
			a.State(), a.Iterations, a.Accepted, start, a.CurrentLikelihood, best, a.Temperature)

		return finish(p)
	},
}

var refineCmd = &cobra.Command{
	Use:   "refine FILE",
	Short: "Refine founder priors with Powell's method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPedigree(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var res pedigree.RefineResult
		if founderFlag != 0 {
			res, err = pedigree.RefineFounder(p, pedigree.ID(founderFlag), cfg.Powell)
		} else {
			res, err = pedigree.RefineAllFounders(p, cfg.Powell)
		}
		if errors.Is(err, pedigree.ErrNoEligibleFounders) {
			log.Println(err)
			return finish(p)
		} else if err != nil {
			return err
		}

		log.Printf("Refined founders %v in %d evaluations: NLL %.6f -> %.6f (reverted: %t)\n",
			res.Founders, res.Evaluations, res.Start, res.Final, res.Reverted)

		return finish(p)
	},
}

var freqDBCmd = &cobra.Command{
	Use:   "freqdb",
	Short: "Manage carrier frequency databases",
}

var freqDBImportCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Write the built-in carrier frequency table into a SQLite database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := expandHome(args[0])
		if err != nil {
			return err
		}

		fdb, err := pedigree.CreateFrequencyDB(path, pedigree.DefaultFrequencies(), "builtin")
		if err != nil {
			return err
		}
		defer fdb.Close()

		rows, err := fdb.Rows()
		if err != nil {
			return err
		}
		log.Printf("Wrote %d frequencies to %s using the %s driver\n", len(rows), path, pedigree.WhichSQLiteDriver())

		return nil
	},
}

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/carbocation/pedigree"
)

func writeReport(w io.Writer, p *pedigree.Pedigree) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "ID\tSex\tStatus\tPopulation\t%s\t%s\t%s\t%s\n",
		pedigree.HomozygousNormal, pedigree.CarrierFromSideA, pedigree.CarrierFromSideB, pedigree.HomozygousAffected)

	for _, ind := range p.Individuals() {
		pop := ind.Population
		if pop == "" {
			pop = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s", ind.ID, ind.Gender, status(ind), pop)
		for _, v := range ind.Probabilities {
			fmt.Fprintf(tw, "\t%.4f (%s)", v, pedigree.FormatFraction(v))
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprintf(tw, "\nNLL\t%.6f\n", p.NegativeLogLikelihood())

	return tw.Flush()
}

func status(ind *pedigree.Individual) string {
	switch {
	case ind.Affected:
		return "affected"
	case ind.Hypothetical:
		return "hypothetical"
	case ind.Frozen:
		return "frozen"
	}
	return "unaffected"
}

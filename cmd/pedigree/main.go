// Command pedigree infers genotype probabilities for a recessive condition
// across a family pedigree and optimizes founder priors.
package main

import (
	"context"
	"log"
	"os"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

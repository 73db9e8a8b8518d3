package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pedigree"
	"github.com/carbocation/pedigree/pedfile"
	"github.com/carbocation/pfx"
)

func main() {
	path := flag.String("freqdb", "", "Filename of the carrier frequency database to dump")
	pedPath := flag.String("pedigree", "", "Optional pedigree to propagate with the database's frequencies")
	flag.Parse()

	if *path == "" {
		flag.PrintDefaults()
		log.Fatalln("No frequency database given")
	}

	if strings.HasPrefix(*path, "~/") {
		usr, err := user.Current()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		*path = filepath.Join(usr.HomeDir, (*path)[2:])
	}

	log.Println("Opening frequency database:", *path, "with driver", pedigree.WhichSQLiteDriver())
	fdb, err := pedigree.OpenFrequencyDB(*path)
	if err != nil {
		log.Fatalln(err)
	}
	defer fdb.Close()

	log.Printf("Metadata: source=%q imported_at=%s\n", fdb.Metadata.Source, fdb.Metadata.ImportedAt)

	rows, err := fdb.DB.Queryx("SELECT condition, population, frequency FROM CarrierFrequency ORDER BY condition ASC, population ASC")
	if err != nil {
		log.Fatalln(err)
	}
	defer rows.Close()

	i := 0
	var row pedigree.FrequencyRow
	for rows.Next() {
		if err := rows.StructScan(&row); err != nil {
			log.Fatalln(err)
		}
		hw := pedigree.HardyWeinberg(row.Frequency)
		fmt.Printf("%d) %s (%s) %s q=%.4f P(affected)=%.6f\n", i, row.Condition, pedigree.ConditionName(row.Condition), row.Population, row.Frequency, hw[pedigree.HomozygousAffected])
		i++
	}
	rows.Close()

	log.Println("Saw", i, "frequencies")

	if *pedPath == "" {
		return
	}

	table, err := fdb.Table()
	if err != nil {
		log.Fatalln(err)
	}
	p, err := pedfile.Open(context.Background(), *pedPath, table)
	if err != nil {
		log.Fatalln(err)
	}
	p.UpdateAllProbabilities()

	for _, ind := range p.Individuals() {
		fmt.Printf("%d %s %v\n", ind.ID, ind.Gender, ind.Probabilities)
	}
	log.Printf("NLL: %.6f\n", p.NegativeLogLikelihood())
}

package main

import (
	"os"

	"github.com/carbocation/pedigree"
	"github.com/carbocation/pedigree/optimize"
	"github.com/carbocation/pfx"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the command. Values from a YAML file are
// applied over the defaults, and explicit flags over both.
type Config struct {
	// FrequencyDB is a SQLite frequency database; empty selects the built-in
	// table.
	FrequencyDB string `yaml:"frequency_db"`

	Seed       int64 `yaml:"seed"`
	Iterations int   `yaml:"iterations"`

	Anneal pedigree.AnnealConfig `yaml:"anneal"`
	Powell optimize.Settings     `yaml:"powell"`
}

func defaultConfig() Config {
	return Config{
		Seed:       1,
		Iterations: 10000,
		Anneal:     pedigree.DefaultAnnealConfig(),
		Powell:     optimize.DefaultSettings(),
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, pfx.Err(err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, pfx.Err(err)
	}

	return cfg, nil
}

func loadFrequencies(path string) (*pedigree.FrequencyTable, error) {
	if path == "" {
		return pedigree.DefaultFrequencies(), nil
	}

	fdb, err := pedigree.OpenFrequencyDB(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer fdb.Close()

	return fdb.Table()
}

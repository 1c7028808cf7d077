package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/sarchlab/iprefetch/prefetch"
)

// runConfig is the on-disk shape of a run configuration file, passed to
// `run --config`. Every field is optional; zero values fall back to the
// spec's own defaults (see prefetch.DefaultRDIPConfig/DefaultDJOLTConfig).
type runConfig struct {
	BlockSize uint `yaml:"block_size"`

	RDIP  *rdipConfigYAML  `yaml:"rdip"`
	DJOLT *djoltConfigYAML `yaml:"djolt"`
}

type rdipConfigYAML struct {
	HistLen  int `yaml:"hist_len"`
	Distance int `yaml:"distance"`
	Sets     int `yaml:"sets"`
	Ways     int `yaml:"ways"`
}

type djoltConfigYAML struct {
	ShortDistance int `yaml:"short_distance"`
	LongDistance  int `yaml:"long_distance"`
	ShortSets     int `yaml:"short_sets"`
	LongSets      int `yaml:"long_sets"`
}

func loadRunConfig(path string) (runConfig, error) {
	var cfg runConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config file %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config file %s", path)
	}
	return cfg, nil
}

// rdipConfig merges cfg over the spec's defaults for the given block size.
func (cfg runConfig) rdipConfig() prefetch.RDIPConfig {
	log2BlockSize := log2(cfg.blockSizeOr(64))
	out := prefetch.DefaultRDIPConfig(log2BlockSize)
	if cfg.RDIP == nil {
		return out
	}
	if cfg.RDIP.HistLen != 0 {
		out.HistLen = cfg.RDIP.HistLen
	}
	if cfg.RDIP.Distance != 0 {
		out.Distance = cfg.RDIP.Distance
	}
	if cfg.RDIP.Sets != 0 {
		out.Sets = cfg.RDIP.Sets
	}
	if cfg.RDIP.Ways != 0 {
		out.Ways = cfg.RDIP.Ways
	}
	return out
}

// djoltConfig merges cfg over the spec's defaults for the given block size.
func (cfg runConfig) djoltConfig() prefetch.DJOLTConfig {
	log2BlockSize := log2(cfg.blockSizeOr(64))
	out := prefetch.DefaultDJOLTConfig(log2BlockSize)
	if cfg.DJOLT == nil {
		return out
	}
	if cfg.DJOLT.ShortDistance != 0 {
		out.ShortDistance = cfg.DJOLT.ShortDistance
	}
	if cfg.DJOLT.LongDistance != 0 {
		out.LongDistance = cfg.DJOLT.LongDistance
	}
	if cfg.DJOLT.ShortSets != 0 {
		out.ShortSets = cfg.DJOLT.ShortSets
	}
	if cfg.DJOLT.LongSets != 0 {
		out.LongSets = cfg.DJOLT.LongSets
	}
	return out
}

func (cfg runConfig) blockSizeOr(def uint) uint {
	if cfg.BlockSize != 0 {
		return cfg.BlockSize
	}
	return def
}

func log2(n uint) uint {
	var bits uint
	for (uint(1) << bits) < n {
		bits++
	}
	return bits
}

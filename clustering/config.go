package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	clustering "github.com/exo-200/clustering_go/pkg"
	"gopkg.in/yaml.v3"
)

// LoadConfiguration reads a JSON or YAML file, chosen by extension, on top
// of the default values.
func LoadConfiguration(filename string) (clustering.Configuration, error) {
	config := clustering.DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	return config, nil
}

func printConfiguration(config clustering.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Calibration snapshot: %s", config.CalibSnapshot), "config")
	logger.Info(fmt.Sprintf("Calibration flavor: %s", config.CalibFlavor), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Write debug: %t", config.WriteDebug), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("APD match time: %g ns", config.APDMatchTime), "config")
	logger.Info(fmt.Sprintf("Charge match time: %g ns", config.ChargeMatchTime), "config")
	logger.Info(fmt.Sprintf("Charge V match time: %g ns", config.ChargeVMatchTime), "config")
	logger.Info(fmt.Sprintf("U induction match time: %g ns", config.UIndMatchTime), "config")
	logger.Info(fmt.Sprintf("V time offset per channel: %g ns", config.VTimeOffsetPerChannelDiff), "config")
	logger.Info(fmt.Sprintf("User drift velocity: %g mm/ns", config.UserDriftVelocity), "config")
	logger.Info(fmt.Sprintf("User collection time: %g ns", config.UserCollectionTime), "config")
	logger.Info(fmt.Sprintf("NLL threshold: %d", config.NLLThreshold), "config")
	logger.Info(fmt.Sprintf("Max cost: %d", config.MaxCost), "config")
	logger.Info(fmt.Sprintf("Reasonable cost: %d", config.ReasonableCost), "config")
	logger.Info(fmt.Sprintf("Ignore induction: %t", config.IgnoreInduction), "config")
	logger.Info(fmt.Sprintf("No max drift time: %t", config.NoMaxDriftTime), "config")
	logger.Info(fmt.Sprintf("Use new energy pdf: %t", config.UseNewEnergyPDF), "config")
}

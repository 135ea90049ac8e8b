package main

import (
	"strings"
	"unicode/utf8"

	"perfmon-dashboard/src/analysis"
	"perfmon-dashboard/src/helpers"
	"perfmon-dashboard/src/logger"
	"perfmon-dashboard/src/models"
	"perfmon-dashboard/src/perfmon"
)

// rejected cells beyond this many are only counted
const maxLoggedRejections = 20

// -----------------------------------------------------------------------------

// parserOptions maps the data section of the config onto perfmon.Options.
func parserOptions(cfg *models.MConfig, log *logger.Logger) perfmon.Options {
	delimiter, _ := utf8.DecodeRuneInString(cfg.Data.Delimiter)
	if delimiter == utf8.RuneError {
		delimiter = ','
	}

	limitMB := cfg.Data.MaxFileMB
	if limitMB == 0 {
		ceiling, ok := helpers.FileSizeCeilingMB()
		if !ok {
			log.Warning("Could not determine system memory, limiting exports to %d MB", ceiling)
		}
		limitMB = ceiling
	}

	logged := 0
	return perfmon.Options{
		Encoding:     cfg.Data.Encoding,
		Delimiter:    delimiter,
		MaxFileBytes: int64(limitMB) << 20,
		OnRejectedCell: func(err *helpers.CellParseError) {
			if logged < maxLoggedRejections {
				log.Debug("%v", err)
			}
			logged++
		},
	}
}

// -----------------------------------------------------------------------------

// loadSnapshot reads the configured export and reduces it. It never returns
// on failure: the process exits through Critical.
func loadSnapshot(cfg *models.MConfig, log *logger.Logger) *analysis.Snapshot {
	log.Info("Loading PerfMon export %s (%s)", cfg.Data.CSVPath, cfg.Data.Encoding)

	table, err := perfmon.Load(cfg.Data.CSVPath, parserOptions(cfg, log.Named("Parser")))
	if err != nil {
		log.Critical("Cannot load data: %v", err)
		return nil
	}

	facade, err := analysis.NewAnalysisFacade(cfg, log.Named("Analysis"))
	if err != nil {
		log.Critical("Cannot set up analysis: %v", err)
		return nil
	}
	for _, rule := range facade.Classifier.Rules() {
		log.Debug("Category rule %s: %s", rule.Category, strings.Join(rule.Keywords, ", "))
	}

	snapshot := facade.BuildSnapshot(table)
	for _, c := range snapshot.OrderedCategories() {
		log.Debug("%-8s %3d counters, %3d with data", c.Category, c.CounterCount, c.Count)
	}
	return snapshot
}

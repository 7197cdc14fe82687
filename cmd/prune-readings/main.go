// Command prune-readings deletes the readings of one reference month,
// optionally restricted to a comma-separated list of unit IDs.
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"condoflow/internal/cli"
	"condoflow/internal/core"
	"condoflow/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	now := time.Now().UTC()
	year := flag.Int("year", now.Year(), "reference year")
	month := flag.Int("month", int(now.Month()), "reference month (1-12)")
	units := flag.String("units", "", "comma-separated unit IDs (empty prunes every unit)")
	flag.Parse()

	if *month < 1 || *month > 12 {
		logger.Error("Invalid month", "month", *month)
		os.Exit(1)
	}

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var unitIDs []string
	if *units != "" {
		for _, id := range strings.Split(*units, ",") {
			if id = strings.TrimSpace(id); id != "" {
				unitIDs = append(unitIDs, id)
			}
		}
	}

	readings := services.NewReadingService(repo)
	ref := core.ReferenceMonth{Year: *year, Month: time.Month(*month)}
	deleted, err := readings.Prune(context.Background(), ref, unitIDs)
	if err != nil {
		logger.Error("Prune failed", "error", err, "year", *year, "month", *month)
		os.Exit(1)
	}

	logger.Info("Prune complete", "year", *year, "month", *month, "deleted", deleted, "units", len(unitIDs))
}

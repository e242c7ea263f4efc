package dataimporter

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railline/pkg/network"
	"github.com/travigo/railline/pkg/stations"
)

// StationRecord is one row of a station CSV file with the header name,order,cn
type StationRecord struct {
	Name  string `csv:"name"`
	Order int    `csv:"order"`
	CN    string `csv:"cn"`
}

type ImportResult struct {
	Imported int
	Skipped  int
}

func ParseStations(reader io.Reader) ([]StationRecord, error) {
	records := []StationRecord{}

	// Allow the optional cn column to be missing on some rows
	err := gocsv.UnmarshalCSV(csvReader(reader), &records)
	if err != nil && !errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return nil, fmt.Errorf("parsing stations csv: %w", err)
	}

	return records, nil
}

// ImportStations adds every record through the directory. Invalid rows are logged and
// skipped, store failures stop the import.
func ImportStations(ctx context.Context, directory *stations.Directory, reader io.Reader) (ImportResult, error) {
	var result ImportResult

	records, err := ParseStations(reader)
	if err != nil {
		return result, err
	}

	for i, record := range records {
		cn := record.CN
		id, err := directory.AddStation(ctx, record.Name, record.Order, &cn)

		if errors.Is(err, network.ErrValidation) {
			log.Warn().Err(err).Int("row", i+1).Str("name", record.Name).Msg("Skipping invalid station")
			result.Skipped++
			continue
		} else if err != nil {
			return result, err
		}

		log.Debug().Uint("id", id).Str("name", record.Name).Msg("Imported station")
		result.Imported++
	}

	log.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("Station import complete")

	return result, nil
}

func csvReader(in io.Reader) gocsv.CSVReader {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r
}

package loader

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	scanerrors "nepse-scanner/internal/errors"
	"nepse-scanner/internal/models"
)

// csvRow matches the column layout of NEPSE price-history exports.
type csvRow struct {
	Symbol string  `csv:"symbol"`
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume int64   `csv:"volume"`
}

// ReadCSV parses a price-history CSV export into normalized daily
// records. dateFormat is the Go layout used for the date column.
func ReadCSV(path, dateFormat string) ([]models.DailyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scanerrors.NewLoadError("csv", path,
			errors.Join(scanerrors.ErrSourceUnavailable, err))
	}
	defer f.Close()

	var rows []*csvRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, scanerrors.NewLoadError("csv", path, err)
	}

	records := make([]models.DailyRecord, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(dateFormat, strings.TrimSpace(row.Date))
		if err != nil {
			return nil, scanerrors.NewValidationError("date", row.Date, "unparseable date")
		}
		records = append(records, models.DailyRecord{
			Symbol: strings.ToUpper(strings.TrimSpace(row.Symbol)),
			Date:   date,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	return Normalize(records)
}

package prices

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Required and optional column names after normalization
const (
	ColumnCommodity = "commodity"
	ColumnDate      = "date"
	ColumnAmount    = "amount"
	ColumnType      = "type"
)

var requiredColumns = []string{ColumnCommodity, ColumnDate, ColumnAmount}

// Format identifies a tabular file encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath infers the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported price file extension %q", filepath.Ext(path))
	}
}

// LoadResult is the validated record set plus how many rows were dropped
type LoadResult struct {
	Records []PriceRecord
	Dropped int
}

// Read parses a price table. Rows missing a commodity, a parseable date or
// a parseable amount are dropped.
func Read(r io.Reader, format Format) (*LoadResult, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return parseTable(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

// readXLSX reads the first sheet with raw cell values so dates come back
// as serial numbers instead of locale-formatted strings
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// NormalizeColumn trims, lowercases and replaces spaces with underscores
func NormalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func parseTable(rows [][]string) (*LoadResult, error) {
	if len(rows) == 0 {
		return nil, &SchemaError{Missing: requiredColumns, Available: []string{}}
	}

	header := make([]string, len(rows[0]))
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = NormalizeColumn(name)
		if _, dup := index[header[i]]; !dup {
			index[header[i]] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Available: header}
	}

	typeIdx, hasType := index[ColumnType]
	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	result := &LoadResult{Records: make([]PriceRecord, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		commodity := cell(row, index[ColumnCommodity])
		date, dateOK := ParseDate(cell(row, index[ColumnDate]))
		amount, amountOK := ParseAmount(cell(row, index[ColumnAmount]))
		if commodity == "" || !dateOK || !amountOK {
			result.Dropped++
			continue
		}

		rec := PriceRecord{Commodity: commodity, Date: date, Amount: amount}
		if hasType {
			rec.Type = cell(row, typeIdx)
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/harmonia-chat/harmonia/internal/models"
)

var expectedHeader = []string{"Title", "Author", "Genre", "Mood", "Year"}

// Load reads the song dataset at path. The format is chosen by extension:
// .csv is parsed with the standard CSV reader, .xlsx via excelize. Any other
// extension is an error.
func Load(path string) (*Catalog, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readCSV(path)
	case ".xlsx":
		records, err = readXLSX(path, "")
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return fromRecords(records)
}

// LoadSheet is like Load but reads a named sheet from an .xlsx workbook.
// An empty sheet name selects the first sheet.
func LoadSheet(path, sheet string) (*Catalog, error) {
	records, err := readXLSX(path, sheet)
	if err != nil {
		return nil, err
	}
	return fromRecords(records)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return records, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("dataset %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func fromRecords(records [][]string) (*Catalog, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, err
	}

	songs := make([]models.Song, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < len(expectedHeader) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", line, len(expectedHeader), len(rec))
		}
		year, err := strconv.Atoi(strings.TrimSpace(rec[4]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid year %q", line, rec[4])
		}
		songs = append(songs, models.Song{
			Title:  strings.TrimSpace(rec[0]),
			Author: strings.TrimSpace(rec[1]),
			Genre:  strings.TrimSpace(rec[2]),
			Mood:   strings.TrimSpace(rec[3]),
			Year:   year,
		})
	}
	return New(songs)
}

func checkHeader(header []string) error {
	if len(header) < len(expectedHeader) {
		return fmt.Errorf("dataset header has %d columns, want %d", len(header), len(expectedHeader))
	}
	for i, want := range expectedHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("dataset header column %d is %q, want %q", i, header[i], want)
		}
	}
	return nil
}

package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediawatch/internal/domain"
	"mediawatch/internal/ports"
)

const dateLayout = "02/01/2006"

// Column headers of the exported press-review sheets.
const (
	columnDate      = "Date"
	columnTerritory = "Territoire"
	columnSubject   = "Sujet"
	columnTheme     = "Thème"
	columnMedia     = "Média"
	columnText      = "Articles"
	columnTonality  = "Qualité du retour"
)

// DirectorySource reads every ';'-delimited CSV file of a folder into one
// collection.
type DirectorySource struct {
	dir    string
	logger *slog.Logger
}

var _ ports.CollectionSource = (*DirectorySource)(nil)

// NewDirectorySource wires the data folder; logger may be nil.
func NewDirectorySource(dir string, logger *slog.Logger) *DirectorySource {
	return &DirectorySource{dir: dir, logger: logger}
}

// Load concatenates the records of every CSV file, in file-name order.
func (s *DirectorySource) Load(ctx context.Context) (domain.Collection, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", s.dir, err)
	}

	var collection domain.Collection
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(s.dir, entry.Name())
		records, err := loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}

		s.debug("loaded data file", "file", entry.Name(), "records", len(records))
		collection = append(collection, records...)
	}

	s.debug("directory source done", "total_records", len(collection))
	return collection, nil
}

func loadFile(path string) (domain.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records domain.Collection
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		record, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	required := []string{columnDate, columnTerritory, columnSubject, columnTheme, columnMedia, columnText, columnTonality}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return index, nil
}

func parseRow(row []string, index map[string]int) (domain.Article, error) {
	cell := func(column string) string {
		i := index[column]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := time.ParseInLocation(dateLayout, cell(columnDate), time.UTC)
	if err != nil {
		return domain.Article{}, fmt.Errorf("parse date %q: %w", cell(columnDate), err)
	}

	return domain.Article{
		Date:      domain.Day(date),
		Territory: cell(columnTerritory),
		Theme:     cell(columnTheme),
		Media:     cell(columnMedia),
		Tonality:  cell(columnTonality),
		Subject:   cell(columnSubject),
		Text:      cell(columnText),
	}, nil
}

func (s *DirectorySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// ErrEmptyCatalog is returned when exporting a catalog with no columns.
var ErrEmptyCatalog = errors.New("catalog is empty")

// YAMLExport is the document written by ExportYAML.
type YAMLExport struct {
	Columns []string `yaml:"columns"`
	Records []Record `yaml:"records"`
}

// ExportParquet writes the catalog at path to out as a Parquet file with
// one string column per header.
func ExportParquet(path, out string) (int, error) {
	headers, rows, err := Read(path)
	if err != nil {
		return 0, err
	}
	if len(headers) == 0 {
		return 0, ErrEmptyCatalog
	}

	group := make(parquet.Group, len(headers))
	for _, h := range headers {
		group[h] = parquet.String()
	}
	schema := parquet.NewSchema("catalog", group)

	columnIndex := make(map[string]int, len(headers))
	for i, col := range schema.Columns() {
		columnIndex[col[0]] = i
	}

	f, err := os.Create(out)
	if err != nil {
		return 0, fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer f.Close()

	writer := parquet.NewWriter(f, schema)

	batch := make([]parquet.Row, 0, len(rows))
	for _, row := range rows {
		pr := make(parquet.Row, len(headers))
		for _, h := range headers {
			i := columnIndex[h]
			pr[i] = parquet.ValueOf(row[h]).Level(0, 0, i)
		}
		batch = append(batch, pr)
	}

	if _, err := writer.WriteRows(batch); err != nil {
		return 0, fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	return len(rows), nil
}

// ExportYAML writes the catalog at path to out as YAML.
func ExportYAML(path, out string) (int, error) {
	headers, rows, err := Read(path)
	if err != nil {
		return 0, err
	}
	if len(headers) == 0 {
		return 0, ErrEmptyCatalog
	}

	data, err := yaml.Marshal(&YAMLExport{Columns: headers, Records: rows})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(out, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write YAML file: %w", err)
	}
	return len(rows), nil
}

// Package main provides snabctl, an offline inspection tool for request
// workbooks: it runs the same parsing pipeline as the server and prints
// what an upload would produce, without touching any catalog.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/altustroy/snab/internal/imports/entity"
	"github.com/altustroy/snab/internal/imports/sheet"
)

var (
	outputPath  string
	pretty      bool
	mappingPath string
)

// parseResult mirrors what the server derives from one upload.
type parseResult struct {
	Metadata  entity.HeaderMetadata `json:"metadata"`
	HeaderRow int                   `json:"header_row"`
	Mapping   entity.ColumnMapping  `json:"mapping"`
	Items     []entity.RawLineItem  `json:"items"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "snabctl [request.xlsx]",
		Short: "Parse a procurement request workbook",
		Long: `snabctl parses a request workbook the way the import API does and
prints the extracted metadata, column mapping and line items as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.Flags().StringVar(&mappingPath, "mapping", "", "JSON file with a column mapping override")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var persisted entity.ColumnMapping
	if mappingPath != "" {
		raw, err := os.ReadFile(mappingPath)
		if err != nil {
			return fmt.Errorf("read mapping file: %w", err)
		}
		if err := json.Unmarshal(raw, &persisted); err != nil {
			return fmt.Errorf("parse mapping file: %w", err)
		}
	}

	grid, err := sheet.Parse(f)
	if err != nil {
		return fmt.Errorf("parse workbook: %w", err)
	}

	meta := sheet.LocateMetadata(grid)
	headerRow, err := sheet.LocateHeaderRow(grid)
	if err != nil {
		return err
	}

	mapping := sheet.ResolveColumns(grid.Row(headerRow), persisted)
	items := sheet.ExtractRows(grid, headerRow, mapping, meta)

	result := parseResult{
		Metadata:  meta,
		HeaderRow: headerRow,
		Mapping:   mapping,
		Items:     items,
	}

	var jsonData []byte
	if pretty {
		jsonData, err = json.MarshalIndent(result, "", "  ")
	} else {
		jsonData, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("serialize result: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	fmt.Println(string(jsonData))
	return nil
}

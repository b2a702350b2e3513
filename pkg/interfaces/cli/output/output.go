package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/embunadw/wms/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// Writer receives text and JSON output when OutputDir is empty;
	// defaults to os.Stdout
	Writer io.Writer
}

// Generate creates output in the specified format
func Generate(report *dto.ComposeReport, config Config) error {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	switch config.Format {
	case "", "text":
		return generateTextOutput(report, config)
	case "json":
		return generateJSONOutput(report, config)
	case "csv":
		return generateCSVOutput(report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(report *dto.ComposeReport, config Config) error {
	w := config.Writer

	fmt.Fprintf(w, "📊 %s Draft Summary\n", report.DocumentType)
	fmt.Fprintf(w, "======================\n\n")

	if report.SourceCode != "" {
		fmt.Fprintf(w, "Source: %s\n", report.SourceCode)
	}
	fmt.Fprintf(w, "Accepted: %d\n", len(report.Accepted))
	fmt.Fprintf(w, "Rejected: %d\n", len(report.Rejected))
	fmt.Fprintf(w, "Compose Time: %v\n\n", report.ComposeTime)

	if len(report.Accepted) > 0 {
		fmt.Fprintf(w, "📋 Accepted Lines:\n")
		fmt.Fprintf(w, "%-15s %-25s %-8s %-8s %-12s\n",
			"Part Number", "Name", "Qty", "Unit", "Unit Price")
		fmt.Fprintf(w, "%-15s %-25s %-8s %-8s %-12s\n",
			"---------------", "-------------------------", "--------", "--------", "------------")

		for _, line := range report.Accepted {
			price := ""
			if line.UnitPrice != nil {
				price = line.UnitPrice.String()
			}
			fmt.Fprintf(w, "%-15s %-25s %-8d %-8s %-12s\n",
				line.PartNumber,
				line.PartName,
				line.Quantity,
				line.Unit,
				price)
		}
		fmt.Fprintln(w)
	}

	if len(report.Rejected) > 0 {
		fmt.Fprintf(w, "⚠️  Rejected Lines:\n")
		fmt.Fprintf(w, "%-5s %-15s %-8s %-26s %s\n",
			"Row", "Part Number", "Qty", "Code", "Message")
		fmt.Fprintf(w, "%-5s %-15s %-8s %-26s %s\n",
			"-----", "---------------", "--------", "--------------------------", "-------")

		for _, r := range report.Rejected {
			fmt.Fprintf(w, "%-5d %-15s %-8s %-26s %s\n",
				r.Row,
				r.PartNumber,
				r.Quantity,
				r.Code,
				r.Message)
		}
		fmt.Fprintln(w)
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintf(w, "💡 Warnings:\n")
		for _, warning := range report.Warnings {
			fmt.Fprintf(w, "  row %d %s: %s\n", warning.Row, warning.PartNumber, warning.Message)
		}
		fmt.Fprintln(w)
	}

	if total := report.Payload.Total(); !total.IsZero() {
		fmt.Fprintf(w, "Total: %s\n", total.String())
	}
	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(report *dto.ComposeReport, config Config) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.Writer, string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "draft.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.Writer, "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes accepted and rejected lines as two CSV files
func generateCSVOutput(report *dto.ComposeReport, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	acceptedFile := filepath.Join(config.OutputDir, "accepted.csv")
	if err := writeAcceptedCSV(report.Accepted, acceptedFile); err != nil {
		return fmt.Errorf("failed to write accepted lines CSV: %w", err)
	}

	rejectedFile := filepath.Join(config.OutputDir, "rejected.csv")
	if err := writeRejectedCSV(report.Rejected, rejectedFile); err != nil {
		return fmt.Errorf("failed to write rejected lines CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.Writer, "💾 CSV results saved to:\n")
		fmt.Fprintf(config.Writer, "  Accepted: %s\n", acceptedFile)
		fmt.Fprintf(config.Writer, "  Rejected: %s\n", rejectedFile)
	}
	return nil
}

func writeAcceptedCSV(lines []dto.LineView, filename string) error {
	records := [][]string{{"part_id", "part_number", "quantity", "priority", "unit_price", "source_line_id", "notes"}}
	for _, l := range lines {
		price := ""
		if l.UnitPrice != nil {
			price = l.UnitPrice.String()
		}
		records = append(records, []string{
			l.PartID,
			l.PartNumber,
			strconv.FormatInt(l.Quantity, 10),
			l.Priority,
			price,
			l.SourceLineID,
			l.Notes,
		})
	}
	return writeCSV(filename, records)
}

func writeRejectedCSV(rejected []dto.RejectedLine, filename string) error {
	records := [][]string{{"row", "part_number", "quantity", "code", "limit", "message"}}
	for _, r := range rejected {
		limit := ""
		if r.Limit != nil {
			limit = strconv.FormatInt(*r.Limit, 10)
		}
		records = append(records, []string{
			strconv.Itoa(r.Row),
			r.PartNumber,
			r.Quantity,
			r.Code,
			limit,
			r.Message,
		})
	}
	return writeCSV(filename, records)
}

func writeCSV(filename string, records [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return file.Close()
}

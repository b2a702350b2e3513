package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/embunadw/wms/pkg/interfaces/cli/commands"
)

func main() {
	var (
		docType     = flag.String("type", "", "Document type: mr, pr, po, delivery, ri, spb")
		sourceCode  = flag.String("source", "", "Source document code")
		location    = flag.String("location", "", "Sending location for stock-bounded documents")
		scenarioDir = flag.String(
			"scenario",
			"",
			"Path to scenario directory containing CSV files",
		)
		partsFile   = flag.String("parts", "", "Path to parts CSV file")
		stockFile   = flag.String("stock", "", "Path to stock CSV file")
		sourcesFile = flag.String("sources", "", "Path to source documents CSV file")
		linesFile   = flag.String("lines", "", "Path to candidate lines CSV file")
		outputDir   = flag.String("output", "", "Output directory for results (optional)")
		format      = flag.String("format", "text", "Output format: text, json, csv")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
		help        = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	config := commands.Config{
		ScenarioDir:  *scenarioDir,
		PartsFile:    *partsFile,
		StockFile:    *stockFile,
		SourcesFile:  *sourcesFile,
		LinesFile:    *linesFile,
		DocumentType: *docType,
		SourceCode:   *sourceCode,
		Location:     *location,
		OutputDir:    *outputDir,
		Format:       *format,
		Verbose:      *verbose,
		Help:         *help,
	}

	cmd := commands.NewComposeCommand(config)
	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/embunadw/wms/pkg/application/dto"
	"github.com/embunadw/wms/pkg/application/services/composer"
	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/infrastructure/repositories/csv"
	"github.com/embunadw/wms/pkg/infrastructure/repositories/memory"
	"github.com/embunadw/wms/pkg/interfaces/cli/output"
)

// Config holds configuration for the compose command
type Config struct {
	ScenarioDir  string
	PartsFile    string
	StockFile    string
	SourcesFile  string
	LinesFile    string
	DocumentType string
	SourceCode   string
	Location     string
	OutputDir    string
	Format       string
	Verbose      bool
	Help         bool
}

// ComposeCommand composes a draft offline from CSV files and reports which
// candidate lines the rules accept
type ComposeCommand struct {
	config Config
}

func NewComposeCommand(config Config) *ComposeCommand {
	return &ComposeCommand{config: config}
}

// Execute runs the compose command
func (c *ComposeCommand) Execute(_ context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	docType, err := c.validateInputs()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	files, err := c.resolveInputFiles()
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	if c.config.Verbose {
		c.printHeader(files)
	}

	loader := csv.NewLoader()

	parts, err := loader.LoadParts(files["Parts"])
	if err != nil {
		return fmt.Errorf("error loading parts: %w", err)
	}
	partRepo := memory.NewPartRepository(len(parts))
	if err := partRepo.LoadParts(parts); err != nil {
		return fmt.Errorf("failed to load parts into repository: %w", err)
	}

	opts := composer.Options{Location: c.config.Location}

	if path, ok := files["Stock"]; ok {
		stock, err := loader.LoadStock(path)
		if err != nil {
			return fmt.Errorf("error loading stock: %w", err)
		}
		opts.Stock = memory.NewStockIndex(stock)
	}

	if c.config.SourceCode != "" {
		path, ok := files["Sources"]
		if !ok {
			return fmt.Errorf("a sources file is required with -source")
		}
		sources, err := loader.LoadSources(path)
		if err != nil {
			return fmt.Errorf("error loading sources: %w", err)
		}
		sourceRepo := memory.NewSourceDocumentRepository()
		if err := sourceRepo.LoadSources(sources); err != nil {
			return fmt.Errorf("failed to load sources into repository: %w", err)
		}
		policy, _ := composer.PolicyFor(docType)
		opts.Source, err = sourceRepo.GetSource(policy.SourceType, c.config.SourceCode)
		if err != nil {
			return err
		}
	}

	candidates, err := loader.LoadCandidateLines(files["Lines"])
	if err != nil {
		return fmt.Errorf("error loading lines: %w", err)
	}

	if c.config.Verbose {
		fmt.Printf("✅ Loaded %d parts and %d candidate lines\n\n", len(parts), len(candidates))
	}

	draft, err := composer.New(docType, opts)
	if err != nil {
		return err
	}

	startTime := time.Now()
	report := Compose(draft, partRepo, candidates)
	report.ComposeTime = time.Since(startTime)

	err = output.Generate(report, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	})
	if err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}
	return nil
}

// Compose feeds every candidate line through draft in file order
func Compose(draft *composer.Composer, parts *memory.PartRepository, candidates []*csv.CandidateLine) *dto.ComposeReport {
	report := &dto.ComposeReport{
		DocumentType: draft.Type().String(),
		Location:     draft.Location(),
		Accepted:     make([]dto.LineView, 0, len(candidates)),
		Rejected:     make([]dto.RejectedLine, 0),
	}
	if src := draft.Source(); src != nil {
		report.SourceCode = src.Code
	}

	for _, candidate := range candidates {
		var result composer.AddResult
		qty, err := entities.ParseQuantity(candidate.RawQuantity)
		if err == nil {
			part, lookupErr := parts.GetPartByNumber(candidate.PartNumber)
			if lookupErr != nil {
				part = nil
			}
			result, err = draft.AddLine(part, qty, entities.LineExtras{
				Priority:  candidate.Priority,
				UnitPrice: candidate.UnitPrice,
				Notes:     candidate.Notes,
			})
		}

		if err != nil {
			report.Rejected = append(report.Rejected, rejection(candidate, err))
			continue
		}

		report.Accepted = append(report.Accepted, dto.NewLineView(draft.Len()-1, result.Line))
		for _, w := range result.Warnings {
			report.Warnings = append(report.Warnings, dto.LineWarning{
				Row:        candidate.Row,
				PartNumber: string(candidate.PartNumber),
				Message:    w,
			})
		}
	}

	report.Payload = draft.ToPayload(entities.Header{Location: draft.Location()})
	return report
}

func rejection(candidate *csv.CandidateLine, err error) dto.RejectedLine {
	rejected := dto.RejectedLine{
		Row:        candidate.Row,
		PartNumber: string(candidate.PartNumber),
		Quantity:   candidate.RawQuantity,
		Message:    err.Error(),
	}
	var ruleErr *entities.RuleError
	if errors.As(err, &ruleErr) {
		rejected.Code = string(ruleErr.Code)
		if ruleErr.Code == entities.CodeQuantityExceedsLimit {
			limit := int64(ruleErr.Limit)
			rejected.Limit = &limit
			rejected.LimitSource = ruleErr.LimitSource
		}
	}
	return rejected
}

// validateInputs validates the command configuration
func (c *ComposeCommand) validateInputs() (entities.DocumentType, error) {
	if c.config.DocumentType == "" {
		return 0, fmt.Errorf("must specify -type")
	}
	docType, err := entities.ParseDocumentType(c.config.DocumentType)
	if err != nil {
		return 0, err
	}
	if c.config.ScenarioDir == "" && (c.config.PartsFile == "" || c.config.LinesFile == "") {
		return 0, fmt.Errorf("must specify either -scenario directory or -parts and -lines files")
	}
	return docType, nil
}

// resolveInputFiles determines the file paths to use. Stock and sources are
// optional; they are only returned when the file exists.
func (c *ComposeCommand) resolveInputFiles() (map[string]string, error) {
	files := map[string]string{
		"Parts":   c.config.PartsFile,
		"Stock":   c.config.StockFile,
		"Sources": c.config.SourcesFile,
		"Lines":   c.config.LinesFile,
	}
	if c.config.ScenarioDir != "" {
		files = map[string]string{
			"Parts":   filepath.Join(c.config.ScenarioDir, "parts.csv"),
			"Stock":   filepath.Join(c.config.ScenarioDir, "stock.csv"),
			"Sources": filepath.Join(c.config.ScenarioDir, "sources.csv"),
			"Lines":   filepath.Join(c.config.ScenarioDir, "lines.csv"),
		}
	}

	for _, name := range []string{"Parts", "Lines"} {
		if _, err := os.Stat(files[name]); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", name, files[name])
		}
	}
	for _, name := range []string{"Stock", "Sources"} {
		if files[name] == "" {
			delete(files, name)
			continue
		}
		if _, err := os.Stat(files[name]); os.IsNotExist(err) {
			delete(files, name)
		}
	}
	return files, nil
}

// printHeader prints the command header information
func (c *ComposeCommand) printHeader(files map[string]string) {
	fmt.Printf("🚀 WMS Draft Composer\n")
	fmt.Printf("Document type: %s\n", c.config.DocumentType)
	if c.config.SourceCode != "" {
		fmt.Printf("Source: %s\n", c.config.SourceCode)
	}
	if c.config.Location != "" {
		fmt.Printf("Location: %s\n", c.config.Location)
	}
	fmt.Printf("Input files:\n")
	for _, name := range []string{"Parts", "Stock", "Sources", "Lines"} {
		if path, ok := files[name]; ok {
			fmt.Printf("  %s: %s\n", name, path)
		}
	}
	fmt.Printf("Output format: %s\n", c.config.Format)
	fmt.Println()
}

// showHelp displays the help message
func (c *ComposeCommand) showHelp() {
	fmt.Printf(`wmsctl - compose warehouse documents offline against the allocation rules

USAGE:
    wmsctl -type <type> -scenario <directory> [-source <code>] [-location <loc>]
    wmsctl -type <type> -parts <file> -lines <file> [-stock <file>] [-sources <file>] ...

OPTIONS:
    -type <type>        Document type: mr, pr, po, delivery, ri, spb
    -source <code>      Source document code (MR for delivery/pr, PR for po, PO for ri)
    -location <loc>     Sending location for stock-bounded documents
    -scenario <dir>     Directory containing parts.csv, stock.csv, sources.csv, lines.csv
    -parts <file>       Path to parts CSV file
    -stock <file>       Path to stock CSV file
    -sources <file>     Path to open source documents CSV file
    -lines <file>       Path to candidate lines CSV file
    -output <dir>       Output directory for results (optional)
    -format <fmt>       Output format: text, json, csv (default: text)
    -verbose            Enable verbose output
    -help               Show this help message

CSV FILE FORMATS:

parts.csv:
    id,part_number,name,unit
    1,P-100,Oil Filter,PCS

stock.csv:
    part_id,location,qty_on_hand,min,max
    1,WH-A,5,2,20

sources.csv:
    doc_type,code,location,vendor_id,line_id,part_id,part_number,requested,fulfilled,unit_price
    MR,MR-001,SITE-1,,70,1,P-100,10,4,

lines.csv:
    part_number,quantity,priority,unit_price,notes
    P-100,6,,,

EXAMPLES:
    wmsctl -type delivery -source MR-001 -location WH-A -scenario examples/delivery_basic -verbose
    wmsctl -type po -source PR-001 -scenario examples/purchase -format json
`)
}

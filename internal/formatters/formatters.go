package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"rolefit/internal/analysis"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// Listing is a titled list of names, such as the branches of a taxonomy.
type Listing struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "Record", &RecordTextFormatter{})
	registry.RegisterFormatter("markdown", "Record", &RecordMarkdownFormatter{})
	registry.RegisterFormatter("text", "Records", &RecordsTextFormatter{})
	registry.RegisterFormatter("markdown", "Records", &RecordsMarkdownFormatter{})
	registry.RegisterFormatter("text", "Listing", &ListingTextFormatter{})
	registry.RegisterFormatter("markdown", "Listing", &ListingMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case analysis.Record, *analysis.Record:
		return "Record"
	case []analysis.Record:
		return "Records"
	case Listing:
		return "Listing"
	default:
		return "any"
	}
}

func asRecord(data any) (analysis.Record, error) {
	switch r := data.(type) {
	case analysis.Record:
		return r, nil
	case *analysis.Record:
		if r == nil {
			return analysis.Record{}, fmt.Errorf("nil record")
		}
		return *r, nil
	default:
		return analysis.Record{}, fmt.Errorf("expected analysis.Record, got %T", data)
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

// RecordTextFormatter handles text formatting for analysis records
type RecordTextFormatter struct{}

func (rtf *RecordTextFormatter) Format(data any) (string, error) {
	rec, err := asRecord(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	writeRecordText(&output, rec)
	return output.String(), nil
}

func writeRecordText(output *strings.Builder, rec analysis.Record) {
	output.WriteString("=== ROLE FIT ANALYSIS ===\n")
	fmt.Fprintf(output, "Branch: %s\n", rec.Branch)
	fmt.Fprintf(output, "Role: %s\n", rec.Role)
	fmt.Fprintf(output, "Score: %d/100\n", rec.Match.Score)
	fmt.Fprintf(output, "Level: %s\n\n", rec.Level)

	fmt.Fprintf(output, "Matched skills (%d): %s\n", len(rec.Match.Matched), joinOrNone(rec.Match.Matched))
	fmt.Fprintf(output, "Missing skills (%d): %s\n\n", len(rec.Match.Missing), joinOrNone(rec.Match.Missing))

	output.WriteString("=== FEEDBACK ===\n")
	output.WriteString(rec.Advisory.FeedbackText)
	output.WriteString("\n")

	if len(rec.Advisory.Roadmap) > 0 {
		output.WriteString("=== LEARNING ROADMAP ===\n")
		for i, step := range rec.Advisory.Roadmap {
			fmt.Fprintf(output, "%d. %s\n", i+1, step)
		}
		output.WriteString("\n")
	}

	output.WriteString("=== REWRITE SUGGESTIONS ===\n")
	output.WriteString(rec.Advisory.RewriteSuggestions)
	output.WriteString("\n")

	if len(rec.Advisory.Tips) > 0 {
		output.WriteString("=== ATS TIPS ===\n")
		for _, tip := range rec.Advisory.Tips {
			fmt.Fprintf(output, "- %s\n", tip)
		}
	}
}

func (rtf *RecordTextFormatter) SupportedType() string {
	return "Record"
}

// RecordMarkdownFormatter handles markdown formatting for analysis records
type RecordMarkdownFormatter struct{}

func (rmf *RecordMarkdownFormatter) Format(data any) (string, error) {
	rec, err := asRecord(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	writeRecordMarkdown(&output, rec)
	return output.String(), nil
}

func writeRecordMarkdown(output *strings.Builder, rec analysis.Record) {
	fmt.Fprintf(output, "# Role Fit: %s / %s\n\n", rec.Branch, rec.Role)
	output.WriteString("| Score | Level | Matched | Missing |\n")
	output.WriteString("|-------|-------|---------|---------|\n")
	fmt.Fprintf(output, "| %d/100 | %s | %d | %d |\n\n",
		rec.Match.Score, rec.Level, len(rec.Match.Matched), len(rec.Match.Missing))

	if len(rec.Match.Matched) > 0 {
		output.WriteString("**Matched:** ")
		output.WriteString(strings.Join(rec.Match.Matched, ", "))
		output.WriteString("\n\n")
	}
	if len(rec.Match.Missing) > 0 {
		output.WriteString("**Missing:** ")
		output.WriteString(strings.Join(rec.Match.Missing, ", "))
		output.WriteString("\n\n")
	}

	output.WriteString(rec.Advisory.FeedbackText)
	output.WriteString("\n")

	if len(rec.Advisory.Roadmap) > 0 {
		output.WriteString("### Learning Roadmap\n\n")
		for i, step := range rec.Advisory.Roadmap {
			fmt.Fprintf(output, "%d. %s\n", i+1, step)
		}
		output.WriteString("\n")
	}

	output.WriteString(rec.Advisory.RewriteSuggestions)

	if len(rec.Advisory.Tips) > 0 {
		output.WriteString("\n### ATS Tips\n\n")
		for _, tip := range rec.Advisory.Tips {
			fmt.Fprintf(output, "- %s\n", tip)
		}
	}
}

func (rmf *RecordMarkdownFormatter) SupportedType() string {
	return "Record"
}

// RecordsTextFormatter summarizes a history listing, one line per record.
type RecordsTextFormatter struct{}

func (rtf *RecordsTextFormatter) Format(data any) (string, error) {
	records, ok := data.([]analysis.Record)
	if !ok {
		return "", fmt.Errorf("expected []analysis.Record, got %T", data)
	}
	if len(records) == 0 {
		return "No analyses recorded.\n", nil
	}

	var output strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&output, "%s  %-20s %-24s %3d  %s\n",
			rec.CreatedAt.Format("2006-01-02 15:04"), rec.Branch, rec.Role, rec.Match.Score, rec.Level)
	}
	return output.String(), nil
}

func (rtf *RecordsTextFormatter) SupportedType() string {
	return "Records"
}

// RecordsMarkdownFormatter renders a history listing as a table.
type RecordsMarkdownFormatter struct{}

func (rmf *RecordsMarkdownFormatter) Format(data any) (string, error) {
	records, ok := data.([]analysis.Record)
	if !ok {
		return "", fmt.Errorf("expected []analysis.Record, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Analysis History\n\n")
	output.WriteString("| When | Branch | Role | Score | Level |\n")
	output.WriteString("|------|--------|------|-------|-------|\n")
	for _, rec := range records {
		fmt.Fprintf(&output, "| %s | %s | %s | %d | %s |\n",
			rec.CreatedAt.Format("2006-01-02 15:04"), rec.Branch, rec.Role, rec.Match.Score, rec.Level)
	}
	return output.String(), nil
}

func (rmf *RecordsMarkdownFormatter) SupportedType() string {
	return "Records"
}

// ListingTextFormatter prints one item per line.
type ListingTextFormatter struct{}

func (ltf *ListingTextFormatter) Format(data any) (string, error) {
	listing, ok := data.(Listing)
	if !ok {
		return "", fmt.Errorf("expected Listing, got %T", data)
	}

	var output strings.Builder
	for _, item := range listing.Items {
		output.WriteString(item)
		output.WriteString("\n")
	}
	return output.String(), nil
}

func (ltf *ListingTextFormatter) SupportedType() string {
	return "Listing"
}

// ListingMarkdownFormatter prints a heading followed by a bullet list.
type ListingMarkdownFormatter struct{}

func (lmf *ListingMarkdownFormatter) Format(data any) (string, error) {
	listing, ok := data.(Listing)
	if !ok {
		return "", fmt.Errorf("expected Listing, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "## %s\n\n", listing.Title)
	for _, item := range listing.Items {
		fmt.Fprintf(&output, "- %s\n", item)
	}
	return output.String(), nil
}

func (lmf *ListingMarkdownFormatter) SupportedType() string {
	return "Listing"
}

// GlobalRegistry is the registry used by the CLI.
var GlobalRegistry = NewFormatterRegistry()

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"orderexport/internal/etl"
)

// renderTable writes rows as a borderless aligned table.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ── Source flags ───────────────────────────────────────────

// sourceFlags select a record source and its configuration. Values layer as
// config file defaults, then --source-config JSON, then --set pairs.
type sourceFlags struct {
	sourceType string
	configJSON string
	set        []string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.sourceType, "source", "json_file", "record source type (see 'source list')")
	fs.StringVar(&f.configJSON, "source-config", "", "source configuration as a JSON object")
	fs.StringArrayVar(&f.set, "set", nil, "source configuration key=value (repeatable)")
}

func (f *sourceFlags) resolve(defaults map[string]etl.SourceConfig) (string, etl.SourceConfig, error) {
	if _, err := etl.GetSource(f.sourceType); err != nil {
		return "", nil, err
	}
	cfg := defaults[f.sourceType].Merge(nil)
	if f.configJSON != "" {
		var over etl.SourceConfig
		if err := json.Unmarshal([]byte(f.configJSON), &over); err != nil {
			return "", nil, fmt.Errorf("parse --source-config: %w", err)
		}
		cfg = cfg.Merge(over)
	}
	for _, kv := range f.set {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return "", nil, fmt.Errorf("--set expects key=value, got %q", kv)
		}
		cfg[strings.TrimSpace(k)] = v
	}
	return f.sourceType, cfg, nil
}

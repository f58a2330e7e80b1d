// Package commands implements the admctl command tree.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/metagrid-io/console-client/internal/constants"
	"github.com/metagrid-io/console-client/pkg/console"
	"github.com/metagrid-io/console-client/pkg/consoleclient"
)

// Output formats.
const (
	OutputFormatJSON = constants.FormatJSON
	OutputFormatYAML = constants.FormatYAML
)

// Common static errors used throughout the commands package.
var (
	ErrEndpointRequired = errors.New("REST endpoint is required (use --api, ADMCTL_API or 'admctl login')")
	ErrNotAuthenticated = errors.New("not authenticated (use --token or 'admctl login')")
	ErrUsernameRequired = errors.New("username is required")
	ErrFieldsRequired   = errors.New("no field values given (use --set or --from-file)")
	ErrInvalidSetFlag   = errors.New("invalid --set value, expected name=value")
	ErrPathRequired     = errors.New("missing required argument")
)

// CreateClient builds a console client from the effective CLI configuration.
func CreateClient() (console.Client, error) {
	endpoint := viper.GetString("api")
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}

	token := viper.GetString("token")
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	config := &console.Config{
		Endpoint:      endpoint,
		Token:         token,
		Administrator: viper.GetBool("administrator"),
		Debug:         viper.GetBool("verbose"),
	}

	client, err := consoleclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// renderStructured writes data as JSON or YAML to stdout.
func renderStructured(data interface{}, format string) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("encoding to JSON: %w", err)
		}
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("encoding to YAML: %w", err)
		}
	}

	return nil
}

// renderRecords renders rows as a terminal table using the server-declared
// listing schema: visible columns only, in declaration order, each cell
// produced by the column's render rule.
func renderRecords(table *console.Table, types console.TypeMap, records []console.Record) error {
	columns := console.Columns(table, console.SchemaOptions{
		DateLayout:     "2006-01-02",
		DateTimeLayout: constants.TimestampLayout,
		TimeLayout:     "15:04:05",
		Types:          types,
	})

	writer := tablewriter.NewWriter(os.Stdout)

	headers := make([]any, 0, len(columns))

	for _, column := range columns {
		if !column.Visible {
			continue
		}

		headers = append(headers, column.Title)
	}

	writer.Header(headers...)

	for _, record := range records {
		row := make([]any, 0, len(headers))

		for _, column := range columns {
			if !column.Visible {
				continue
			}

			cell := column.Format(record)
			if cell == "" {
				cell = constants.NotAvailable
			}

			row = append(row, cell)
		}

		_ = writer.Append(row...)
	}

	_ = writer.Render()

	return nil
}

// renderRecordDetail renders one record as a property table.
func renderRecordDetail(record console.Record) {
	writer := tablewriter.NewWriter(os.Stdout)
	writer.Header("Property", "Value")

	for _, key := range sortedKeys(record) {
		_ = writer.Append(key, fmt.Sprintf("%v", record[key]))
	}

	_ = writer.Render()
}

func sortedKeys(record console.Record) []string {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

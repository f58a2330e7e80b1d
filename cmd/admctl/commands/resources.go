package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/metagrid-io/console-client/internal/constants"
	"github.com/metagrid-io/console-client/pkg/console"
)

// Kind binds a command name to a console resource accessor.
type Kind struct {
	Name     string
	Short    string
	Resource func(client console.Client) console.Resource
}

// StockKinds returns the entity kinds admctl exposes as top-level commands.
func StockKinds() []Kind {
	return []Kind{
		{"providers", "Manage service providers", console.Client.Providers},
		{"authenticators", "Manage authenticators", console.Client.Authenticators},
		{"osmanagers", "Manage OS managers", console.Client.OSManagers},
		{"transports", "Manage transports", console.Client.Transports},
		{"networks", "Manage networks", console.Client.Networks},
		{"servicepools", "Manage service pools", console.Client.ServicePools},
		{"metapools", "Manage meta pools", console.Client.MetaPools},
		{"calendars", "Manage calendars", console.Client.Calendars},
		{"accounts", "Manage accounting entries", console.Client.Accounts},
		{"tunnels", "Manage tunnel servers", console.Client.Tunnels},
	}
}

// NewKindCommand creates the command tree for one stock entity kind.
func NewKindCommand(kind Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind.Name,
		Short: kind.Short,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	addResourceSubcommands(cmd, kind.Resource)

	return cmd
}

// NewResourceCommand creates the generic escape hatch for resource paths the
// CLI has no named command for, detail paths included
// (e.g. "admctl resource list providers/42/services").
func NewResourceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Operate on an arbitrary resource path",
		Long: `Operate on an arbitrary resource path of the console REST API.

Every operation takes the path as its first argument. Detail collections
are addressed with the parent record in the path, for example:
admctl resource list providers/42/services`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	addResourceSubcommands(cmd, nil)

	for _, child := range cmd.Commands() {
		adjustPathArgs(child)
	}

	return cmd
}

// adjustPathArgs rewires every leaf operation to expect the resource path as
// its first positional argument; each operation's own arity check applies to
// the arguments after it.
func adjustPathArgs(cmd *cobra.Command) {
	if cmd.HasSubCommands() {
		for _, child := range cmd.Commands() {
			adjustPathArgs(child)
		}

		return
	}

	cmd.Args = prependPathArg(cmd.Args)
	cmd.Use = strings.Replace(cmd.Use, cmd.Name(), cmd.Name()+" PATH", 1)
}

func prependPathArg(next cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return fmt.Errorf("%w: resource path", ErrPathRequired)
		}

		if next == nil {
			return nil
		}

		return next(cmd, args[1:])
	}
}

// addResourceSubcommands attaches the standard operation set. accessor may
// be nil, in which case the first positional argument names the path and is
// consumed before the operation arguments.
func addResourceSubcommands(parent *cobra.Command, accessor func(console.Client) console.Resource) {
	resolve := func(cmd *cobra.Command, args []string) (console.Client, console.Resource, []string, error) {
		client, err := CreateClient()
		if err != nil {
			return nil, nil, nil, err
		}

		if accessor != nil {
			return client, accessor(client), args, nil
		}

		return client, client.Resource(args[0]), args[1:], nil
	}

	parent.AddCommand(newListCommand(resolve))
	parent.AddCommand(newGetCommand(resolve))
	parent.AddCommand(newCreateCommand(resolve))
	parent.AddCommand(newEditCommand(resolve))
	parent.AddCommand(newDeleteCommand(resolve))
	parent.AddCommand(newTypesCommand(resolve))
	parent.AddCommand(newTableInfoCommand(resolve))
	parent.AddCommand(newGUICommand(resolve))
	parent.AddCommand(newTestCommand(resolve))
	parent.AddCommand(newLogsCommand(resolve))
	parent.AddCommand(newPermissionsCommand(resolve))
}

type resolveFunc func(cmd *cobra.Command, args []string) (console.Client, console.Resource, []string, error)

func newListCommand(resolve resolveFunc) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resource, _, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			ctx := context.Background()

			var records []console.Record
			if summary {
				records, err = resource.Summary(ctx)
			} else {
				records, err = resource.Overview(ctx)
			}

			if err != nil {
				return fmt.Errorf("failed to list %s: %w", resource.Path(), err)
			}

			output := viper.GetString("output")
			if output == OutputFormatJSON || output == OutputFormatYAML {
				return renderStructured(records, output)
			}

			table, err := resource.TableInfo(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch %s schema: %w", resource.Path(), err)
			}

			types, err := resource.TypeMap(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch %s types: %w", resource.Path(), err)
			}

			return renderRecords(table, types, records)
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "fetch the summarized variant")

	return cmd
}

func newGetCommand(resolve resolveFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resource, rest, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			record, err := resource.Item(context.Background(), rest[0])
			if err != nil {
				return fmt.Errorf("failed to get %s/%s: %w", resource.Path(), rest[0], err)
			}

			output := viper.GetString("output")
			if output == OutputFormatJSON || output == OutputFormatYAML {
				return renderStructured(record, output)
			}

			renderRecordDetail(record)

			return nil
		},
	}
}

func newCreateCommand(resolve resolveFunc) *cobra.Command {
	var (
		subtype  string
		sets     []string
		fromFile string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a record",
		Long: `Create a record from the server-declared form for its sub-type.

Field values come from repeated --set name=value flags and/or a YAML or
JSON file. Fields left unset keep the server's declared defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, resource, _, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			ctx := context.Background()

			values, err := composeValues(ctx, client, resource, subtype, nil, sets, fromFile)
			if err != nil {
				return err
			}

			if subtype != "" {
				values["type"] = subtype
			}

			record, err := resource.Create(ctx, values)
			if err != nil {
				return fmt.Errorf("failed to create %s record: %w", resource.Path(), err)
			}

			fmt.Fprintf(os.Stdout, "Successfully created %s record '%s'\n", resource.Path(), record.ID())

			return nil
		},
	}

	cmd.Flags().StringVar(&subtype, "type", "", "sub-type of the new record (required for polymorphic kinds)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as name=value (repeatable)")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "YAML or JSON file with field values")

	return cmd
}

func newEditCommand(resolve resolveFunc) *cobra.Command {
	var (
		sets     []string
		fromFile string
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Modify a record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, resource, rest, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			ctx := context.Background()

			existing, err := resource.Item(ctx, rest[0])
			if err != nil {
				return fmt.Errorf("failed to get %s/%s: %w", resource.Path(), rest[0], err)
			}

			values, err := composeValues(ctx, client, resource, existing.Type(), existing, sets, fromFile)
			if err != nil {
				return err
			}

			values["id"] = rest[0]
			if existing.Type() != "" {
				values["type"] = existing.Type()
			}

			record, err := resource.Save(ctx, values)
			if err != nil {
				return fmt.Errorf("failed to save %s/%s: %w", resource.Path(), rest[0], err)
			}

			fmt.Fprintf(os.Stdout, "Successfully updated %s record '%s'\n", resource.Path(), record.ID())

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as name=value (repeatable)")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "YAML or JSON file with field values")

	return cmd
}

// composeValues runs the dynamic form for one sub-type: fetch the field
// descriptors, seed them with the existing record, apply the operator's
// values through the form so filler cascades fire, and return the outgoing
// value set.
func composeValues(ctx context.Context, client console.Client, resource console.Resource, subtype string, existing console.Record, sets []string, fromFile string) (console.Record, error) {
	descriptors, err := resource.GUI(ctx, subtype)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s form: %w", resource.Path(), err)
	}

	form, err := console.BuildForm(descriptors, existing, client)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s form: %w", resource.Path(), err)
	}

	values, err := readFieldValues(sets, fromFile)
	if err != nil {
		return nil, err
	}

	if existing == nil && len(values) == 0 {
		return nil, ErrFieldsRequired
	}

	for name, value := range values {
		err = form.SetValue(ctx, name, value)
		if err != nil {
			return nil, fmt.Errorf("setting field %s: %w", name, err)
		}
	}

	return form.Values(), nil
}

// readFieldValues merges --from-file content with --set overrides, the
// latter winning.
func readFieldValues(sets []string, fromFile string) (map[string]interface{}, error) {
	values := make(map[string]interface{})

	if fromFile != "" {
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fromFile, err)
		}

		if strings.HasSuffix(fromFile, ".json") {
			err = json.Unmarshal(data, &values)
		} else {
			err = yaml.Unmarshal(data, &values)
		}

		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", fromFile, err)
		}
	}

	for _, set := range sets {
		name, value, found := strings.Cut(set, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSetFlag, set)
		}

		values[name] = value
	}

	return values, nil
}

func newDeleteCommand(resolve resolveFunc) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete ID [ID...]",
		Short: "Delete records",
		Long: `Delete one or more records by id.

Multi-id deletes run independently per record: ids that fail leave the
rest untouched, and the per-id outcome is reported once all attempts
finish.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resource, ids, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			if !force {
				fmt.Fprintf(os.Stdout, "Really delete %d record(s) from %s? (y/N): ", len(ids), resource.Path())

				var response string

				_, _ = fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					_, _ = os.Stdout.WriteString("Cancelled\n")

					return nil
				}
			}

			report := resource.DeleteAll(context.Background(), ids)

			for _, result := range report.Results {
				if result.Success {
					fmt.Fprintf(os.Stdout, "Deleted %s/%s\n", resource.Path(), result.ID)
				} else {
					fmt.Fprintf(os.Stdout, "Failed %s/%s: %v\n", resource.Path(), result.ID, result.Err)
				}
			}

			if report.Failed > 0 {
				return fmt.Errorf("failed to delete %d of %d record(s): %w", report.Failed, len(ids), report.FirstError())
			}

			fmt.Fprintf(os.Stdout, "Successfully deleted %d record(s)\n", report.Succeeded)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

func newTypesCommand(resolve resolveFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the sub-types a kind supports",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resource, _, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			types, err := resource.Types(context.Background())
			if err != nil {
				return fmt.Errorf("failed to fetch %s types: %w", resource.Path(), err)
			}

			output := viper.GetString("output")
			if output == OutputFormatJSON || output == OutputFormatYAML {
				return renderStructured(types, output)
			}

			writer := tablewriter.NewWriter(os.Stdout)
			writer.Header("Type", "Name", "Group", "Description")

			for _, info := range types {
				_ = writer.Append(info.Type, info.Name, info.Group, info.Description)
			}

			_ = writer.Render()

			return nil
		},
	}
}

func newTableInfoCommand(resolve resolveFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "tableinfo",
		Short: "Show the listing schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resource, _, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			table, err := resource.TableInfo(context.Background())
			if err != nil {
				return fmt.Errorf("failed to fetch %s schema: %w", resource.Path(), err)
			}

			output := viper.GetString("output")
			if output == OutputFormatJSON || output == OutputFormatYAML {
				return renderStructured(table, output)
			}

			fmt.Fprintf(os.Stdout, "%s\n", table.Title)

			writer := tablewriter.NewWriter(os.Stdout)
			writer.Header("Field", "Title", "Render", "Visible")

			for _, field := range table.Fields {
				_ = writer.Append(field.Name, field.Title, string(field.Type), fmt.Sprintf("%t", field.Visible))
			}

			_ = writer.Render()

			return nil
		},
	}
}

func newGUICommand(resolve resolveFunc) *cobra.Command {
	var subtype string

	cmd := &cobra.Command{
		Use:   "gui",
		Short: "Show the editable-field form descriptor",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resource, _, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			descriptors, err := resource.GUI(context.Background(), subtype)
			if err != nil {
				return fmt.Errorf("failed to fetch %s form: %w", resource.Path(), err)
			}

			output := viper.GetString("output")
			if output == OutputFormatJSON || output == OutputFormatYAML {
				return renderStructured(descriptors, output)
			}

			writer := tablewriter.NewWriter(os.Stdout)
			writer.Header("Field", "Label", "Type", "Required", "Default")

			for _, descriptor := range descriptors {
				_ = writer.Append(
					descriptor.Name,
					descriptor.GUI.Label,
					string(descriptor.GUI.Type),
					fmt.Sprintf("%t", descriptor.GUI.Required),
					fmt.Sprintf("%v", descriptor.GUI.Default),
				)
			}

			_ = writer.Render()

			return nil
		},
	}

	cmd.Flags().StringVar(&subtype, "type", "", "sub-type of the form")

	return cmd
}

func newTestCommand(resolve resolveFunc) *cobra.Command {
	var (
		subtype  string
		sets     []string
		fromFile string
	)

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test candidate settings without saving them",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resource, _, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			values, err := readFieldValues(sets, fromFile)
			if err != nil {
				return err
			}

			result, err := resource.Test(context.Background(), subtype, values)
			if err != nil {
				return fmt.Errorf("failed to test %s settings: %w", resource.Path(), err)
			}

			fmt.Fprintln(os.Stdout, result)

			return nil
		},
	}

	cmd.Flags().StringVar(&subtype, "type", "", "sub-type under test")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as name=value (repeatable)")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "YAML or JSON file with field values")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newLogsCommand(resolve resolveFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "logs ID",
		Short: "Show the server-side log of a record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resource, rest, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			entries, err := resource.Logs(context.Background(), rest[0])
			if err != nil {
				return fmt.Errorf("failed to fetch %s/%s log: %w", resource.Path(), rest[0], err)
			}

			output := viper.GetString("output")
			if output == OutputFormatJSON || output == OutputFormatYAML {
				return renderStructured(entries, output)
			}

			writer := tablewriter.NewWriter(os.Stdout)
			writer.Header("Date", "Level", "Source", "Message")

			for _, entry := range entries {
				_ = writer.Append(entry.Stamp.Format(constants.TimestampLayout), entry.Level, entry.Source, entry.Message)
			}

			_ = writer.Render()

			return nil
		},
	}
}

func newPermissionsCommand(resolve resolveFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Manage explicit permission grants",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get ID",
		Short: "List grants on a record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resource, rest, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			entries, err := resource.GetPermissions(context.Background(), rest[0])
			if err != nil {
				return fmt.Errorf("failed to fetch grants on %s/%s: %w", resource.Path(), rest[0], err)
			}

			output := viper.GetString("output")
			if output == OutputFormatJSON || output == OutputFormatYAML {
				return renderStructured(entries, output)
			}

			writer := tablewriter.NewWriter(os.Stdout)
			writer.Header("ID", "Kind", "Principal", "Level")

			for _, entry := range entries {
				_ = writer.Append(entry.ID, entry.PrincipalKind, entry.PrincipalName, entry.Level.String())
			}

			_ = writer.Render()

			return nil
		},
	})

	var level string

	addCmd := &cobra.Command{
		Use:   "add ID KIND PRINCIPAL_ID",
		Short: "Grant a permission level to a user or group",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resource, rest, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			permission, err := console.ParsePermission(level)
			if err != nil {
				return err
			}

			err = resource.AddPermission(context.Background(), rest[0], rest[1], rest[2], permission)
			if err != nil {
				return fmt.Errorf("failed to grant permission on %s/%s: %w", resource.Path(), rest[0], err)
			}

			fmt.Fprintf(os.Stdout, "Granted %s to %s '%s'\n", permission, rest[1], rest[2])

			return nil
		},
	}

	addCmd.Flags().StringVar(&level, "level", "read", "permission level (read, management, all)")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke GRANT_ID [GRANT_ID...]",
		Short: "Revoke permission grants",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resource, ids, err := resolve(cmd, args)
			if err != nil {
				return err
			}

			err = resource.RevokePermissions(context.Background(), ids)
			if err != nil {
				return fmt.Errorf("failed to revoke grants: %w", err)
			}

			fmt.Fprintf(os.Stdout, "Revoked %d grant(s)\n", len(ids))

			return nil
		},
	})

	return cmd
}

package commands

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BuildInfo carries the build identification stamped in at link time.
type BuildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Built   string `json:"built" yaml:"built"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the admctl CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := viper.GetString("output")
			if output == OutputFormatJSON || output == OutputFormatYAML {
				return renderStructured(info, output)
			}

			writer := tablewriter.NewWriter(os.Stdout)
			writer.Header("Property", "Value")
			_ = writer.Append("Version", info.Version)
			_ = writer.Append("Commit", info.Commit)
			_ = writer.Append("Built", info.Built)
			_ = writer.Render()

			return nil
		},
	}
}

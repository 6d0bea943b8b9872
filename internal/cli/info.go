package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/wikifactcheck/internal/model"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show dataset metadata",
	Long:  `Display the WikiFactCheck-English metadata: features, labels, splits, download locations and citation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(model.Info())
		if err != nil {
			return fmt.Errorf("error marshaling dataset info: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cancerscope/ml"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List the 30 feature names in the order models expect them",
	Run: func(cmd *cobra.Command, args []string) {
		for i, name := range ml.FeatureNames() {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i+1, name)
		}
	},
}

package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the isoguide version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipSetup: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("isoguide version %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

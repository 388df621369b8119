package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/abhisek/labquest/internal/lessons"
)

// version is set via -ldflags at build time.
var version = ""

// buildVersion prefers the ldflags value, then the module version recorded
// by `go install`.
func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and supported lesson schema",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("labquest %s (%s, %s/%s)\n", buildVersion(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Printf("lesson schema %s.x\n", lessons.SupportedSchema)
	},
}

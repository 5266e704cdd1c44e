// benv envs
package cmd

import (
	"fmt"
	"strings"

	"github.com/benv-build/benv/internal/env"
	"github.com/benv-build/benv/internal/msg"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	flagAllPlatforms bool
	flagShowFlags    bool
)

func printEnv(name string) {
	e, err := env.ForBuildType(name)
	if err != nil {
		msg.Fatal("%v", err)
	}

	fmt.Printf("  %s", color.HiCyanString(name))
	if e.Toolset != "" {
		fmt.Printf(" (toolset %s)", e.Toolset)
	}
	fmt.Println()

	if !flagShowFlags {
		return
	}
	if len(e.Defines) > 0 {
		fmt.Printf("    defines:   %s\n", strings.Join(e.Defines, " "))
	}
	if len(e.CCFlags) > 0 {
		fmt.Printf("    ccflags:   %s\n", strings.Join(e.CCFlags, " "))
	}
	if len(e.LinkFlags) > 0 {
		fmt.Printf("    linkflags: %s\n", strings.Join(e.LinkFlags, " "))
	}
	if len(e.ARFlags) > 0 {
		fmt.Printf("    arflags:   %s\n", strings.Join(e.ARFlags, " "))
	}
}

func doEnvs(cmd *cobra.Command, args []string) {
	platforms := []env.Platform{env.Current()}
	if flagAllPlatforms {
		platforms = []env.Platform{env.Windows, env.Mac, env.POSIX}
	}

	for _, p := range platforms {
		multi := flagAllPlatforms || env.MultiToolset()
		fmt.Printf("%s:\n", p)
		for _, name := range env.BuildTypes(p, multi) {
			printEnv(name)
		}
	}
}

var envsCmd = &cobra.Command{
	Use:   "envs",
	Short: "List the available build types",
	Long:  `List the build types recognized on this platform and, with --flags, the environments they produce`,
	Run:   doEnvs,
}

func init() {
	// benv envs subcommand
	rootCmd.AddCommand(envsCmd)
	envsCmd.Flags().BoolVarP(&flagAllPlatforms, "all", "a", false, "List build types for every platform")
	envsCmd.Flags().BoolVarP(&flagShowFlags, "flags", "f", false, "Show the flag tables of each environment")
}

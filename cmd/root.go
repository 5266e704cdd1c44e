// benv [path], benv build [path]
package cmd

import (
	"fmt"
	"os"

	"github.com/benv-build/benv/internal/builder"
	"github.com/benv-build/benv/internal/env"
	"github.com/benv-build/benv/internal/msg"
	"github.com/spf13/cobra"
)

var (
	flagSamples   bool
	flagJobs      int
	flagBuild     EnumSliceValue
	flagGenerator EnumValue = NewEnumValue("native", map[string]string{
		"native": "Use benv's builder (default)",
		"ninja":  "Generates build.ninja files",
	})
)

func doBuild(cmd *cobra.Command, args []string) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	b, err := builder.NewBuilderInDirectory(target)
	if err != nil {
		msg.Fatal("%v", err)
	}
	opts := builder.Options{
		BuildTypes: flagBuild.Values(),
		Samples:    flagSamples,
		Generator:  flagGenerator.Value(),
		Jobs:       flagJobs,
	}
	if err := b.Build(opts); err != nil {
		msg.Fatal("%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "benv [target path]",
	Short: "Build environment assembler",
	Long:  `Build environment assembler`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doBuild,
}

var buildCmd = &cobra.Command{
	Use:   "build [target path]",
	Short: "Build the package",
	Long:  `Build the package. If no target path is given, uses "."`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doBuild,
}

func init() {
	platformTypes := env.BuildTypes(env.Current(), env.MultiToolset())
	flagBuild = NewEnumSliceValue([]string{env.DebugType(env.Current())}, platformTypes)

	addBuildFlags(rootCmd)

	// benv build subcommand
	rootCmd.AddCommand(buildCmd)
	addBuildFlags(buildCmd)
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().VarP(&flagBuild, "build", "b", "Build types to build, any of "+flagBuild.HelpString())
	cmd.Flags().BoolVarP(&flagSamples, "samples", "s", false, "Also build the samples")
	cmd.Flags().VarP(&flagGenerator, "gen", "g", "Generator to build with, one of "+flagGenerator.HelpString())
	cmd.Flags().IntVarP(&flagJobs, "jobs", "j", 0, "Number of parallel jobs, 0 for the CPU count")
	cmd.RegisterFlagCompletionFunc("build", flagBuild.CompletionFunc())
	cmd.RegisterFlagCompletionFunc("gen", flagGenerator.CompletionFunc())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// benv init [name], benv new [path]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benv-build/benv/internal/builder"
	"github.com/benv-build/benv/internal/msg"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func writefile(content string, elem ...string) {
	path := filepath.Join(elem...)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err = os.WriteFile(path, []byte(content), 0o644); err != nil {
			msg.Fatal("create file %s: %v", path, err)
		}
		fmt.Printf("%s file: %s\n", color.HiGreenString("Created"), filepath.ToSlash(path))
	}
}

func mkdir(elem ...string) {
	path := filepath.Join(elem...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		msg.Fatal("mkdir %s: %v", path, err)
	}
}

func getProgramName() string {
	if len(os.Args) == 0 {
		return "benv"
	}
	basename := filepath.Base(os.Args[0])
	return strings.TrimSuffix(basename, filepath.Ext(basename))
}

// initIn initializes a package in an existing specified directory. The
// manifest goes into a benv/ subdirectory so the source root sits one
// level above it.
func initIn(dir, name string, lib bool) {
	mkdir(dir, "benv")
	mkdir(dir, "src")

	if lib {
		writefile(`[package]
name = "`+name+`"
description = "This is where I make a library."

[target]
lib = true
sources = ["src/**.cpp", "src/**.cc", "src/**.c"]
headers = ["src/**.hpp", "src/**.h"]

[samples]
sources = ["samples/**.cpp", "samples/**.cc", "samples/**.c"]

[dependencies]
`, dir, "benv", builder.ManifestFilename)

		writefile(`#include <stdio.h>
#include "hello_world.h"

void hello_world() {
    puts("Hello, World!");
}
`, dir, "src", "hello_world.c")

		writefile(`#ifndef HELLOWORLD_H
#define HELLOWORLD_H

#ifdef __cplusplus
extern "C" {
#endif

void hello_world();

#ifdef __cplusplus
} // extern "C"
#endif

#endif
`, dir, "src", "hello_world.h")

		mkdir(dir, "samples")
		writefile(`#include "hello_world.h"

int main(void) {
    hello_world();
    return 0;
}
`, dir, "samples", "sample1.c")
	} else {
		writefile(`[package]
name = "`+name+`"
description = "This is where I make a project."

[target]
sources = ["src/**.cpp", "src/**.cc", "src/**.c"]

[dependencies]
`, dir, "benv", builder.ManifestFilename)

		writefile(`// You may change this to a .cpp (.cc) file if you'd like
#include <stdio.h>

int main(void) {
    puts("Hello, World!");
    return 0;
}
`, dir, "src", "main.c")
	}

	writefile(`benv/build/
`, dir, ".gitignore")

	programName := getProgramName()
	benvDir := filepath.ToSlash(filepath.Join(dir, "benv"))
	fmt.Printf("You can now do %s to build.\n", color.HiCyanString(programName+" "+benvDir))
}

var library bool

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a new package in the current directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initIn(".", args[0], library)
	},
}

var newCmd = &cobra.Command{
	Use:   "new [path]",
	Short: "Create a new package in a new directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mkdir(args[0])
		initIn(args[0], filepath.Base(args[0]), library)
	},
}

func init() {
	// benv init subcommand
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&library, "lib", "l", false, "Create a library target")

	// benv new subcommand
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().BoolVarP(&library, "lib", "l", false, "Create a library target")
}

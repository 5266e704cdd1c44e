package main

import "github.com/benv-build/benv/cmd"

func main() {
	cmd.Execute()
}

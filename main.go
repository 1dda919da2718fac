// Package main is the entry point for the mutorch CLI.
package main

import "gooze.dev/pkg/mutorch/cmd"

func main() {
	cmd.Execute()
}

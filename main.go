// Package main is the entry point for the shadeopt CLI.
package main

import "shadeopt.dev/pkg/shadeopt/cmd"

func main() {
	cmd.Execute()
}

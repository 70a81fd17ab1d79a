// Package main is the entry point for the lakeview application
package main

import "github.com/lakewatch/lakeview/cmd"

func main() {
	cmd.Execute()
}

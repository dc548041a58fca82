// Package main is the entry point for the factory monitor.
package main

import "factory-monitor/cmd/factoryd/cmd"

func main() {
	cmd.Execute()
}

// Package main provides the entry point for the Linkage Tracer application.
package main

import "linkage-tracer/cmd"

func main() {
	cmd.Execute()
}

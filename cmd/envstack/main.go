// Package main implements the envstack CLI tool.
// It renders, deploys, and monitors CloudFormation environments.
package main

import "github.com/envstack/envstack/cmd/envstack/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/agentic-research/caomdb/cmd"

func main() {
	cmd.Execute()
}

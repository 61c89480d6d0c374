package main

import "github.com/altin/gh-actions-cost/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/csvgrid/csvgrid/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/pfrederiksen/boatrace-collector/internal/cli"

func main() {
	cli.Execute()
}

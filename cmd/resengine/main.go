package main

import "resengine/internal/cli"

func main() {
	cli.Execute()
}

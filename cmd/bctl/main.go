package main

import (
	"github.com/mchmarny/bureau/pkg/cli"
)

func main() {
	cli.Execute()
}

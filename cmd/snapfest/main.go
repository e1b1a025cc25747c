package main

import (
	"github.com/snapfest/snapfest/internal/cli"
)

func main() {
	cli.Execute()
}

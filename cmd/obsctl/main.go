package main

import (
	"github.com/NVIDIA/observability-stack/pkg/cli"
)

func main() {
	cli.Execute()
}

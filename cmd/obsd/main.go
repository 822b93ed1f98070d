package main

import (
	"context"
	"log"

	"github.com/NVIDIA/observability-stack/pkg/api"
)

func main() {
	if err := api.Serve(context.Background()); err != nil {
		log.Fatal(err)
	}
}

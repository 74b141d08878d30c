// Command ovaview serves the OVA video library view-model API.
package main

import (
	"context"
	"log"

	"github.com/dalemusser/ovaview/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}

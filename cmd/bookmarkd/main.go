package main

import (
	"log"

	"github.com/smartbookmark/bookmarkd/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ bookmarkd failed to start: %v", err)
	}
}

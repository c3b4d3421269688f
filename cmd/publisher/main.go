package main

import (
	"os"

	"github.com/avolkovs/clipstream/internal/app"
)

func main() {
	code := app.Run("publisher", run)
	os.Exit(code)
}

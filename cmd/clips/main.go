package main

import (
	"os"

	"github.com/avolkovs/clipstream/internal/app"
)

func main() {
	code := app.Run("clips", run)
	os.Exit(code)
}

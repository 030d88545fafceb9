package main

import (
	"os"

	"setlist-api/core/logger"
	"setlist-api/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
		os.Exit(1)
	}
}

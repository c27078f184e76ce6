package main

import (
	"fmt"
	"os"

	"github.com/handiism/mal-image-downloader/internal/config"
	"github.com/handiism/mal-image-downloader/internal/tui"
)

func main() {
	settings := config.DefaultSettings()
	if len(os.Args) > 1 {
		var err error
		settings, err = config.Load(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

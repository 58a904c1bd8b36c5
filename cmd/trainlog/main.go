package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"trainlog/internal/di"
	"trainlog/internal/structures"
)

func main() {
	var flags structures.CliFlags
	pflag.StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "path to the YAML config file")
	pflag.BoolVarP(&flags.DebugMode, "debug", "d", false, "mirror logs to the console")
	pflag.Parse()

	app, cleanup, err := di.InitApp(&flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trainlog: %s\n", err)
		os.Exit(1)
	}

	err = app.Run()
	cleanup()
	app.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "trainlog: %s\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/mwantia/goshare/cmd/goshare/cli"
	"github.com/mwantia/goshare/cmd/goshare/cli/client"
	"github.com/mwantia/goshare/cmd/goshare/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewVersionCommand())

	root.AddCommand(server.NewBotCommand())
	root.AddCommand(server.NewConfigCommand())

	root.AddCommand(client.NewTokenCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

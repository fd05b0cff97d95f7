package main

import (
	"os"

	"github.com/heliumhq/invite-dashboard-api/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"log"
	"os"

	"github.com/ZanzyTHEbar/time-roi-meter/internal/cli"
)

// Populated via ldflags at release time.
var (
	version string
	commit  string
)

func main() {
	cli.SetVersion(version, commit)

	if err := cli.NewApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

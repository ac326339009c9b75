// tikgrab resolves TikTok links to direct media URLs from the command line.
package main

import (
	"os"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}

// Command authfiles writes the Earthdata dotfiles (.netrc, .urs_cookies,
// .dodsrc) some GES DISC tooling expects into the user's home directory.
// The sync service itself authenticates in-process and does not need them.
package main

import (
	"log/slog"
	"os"

	"github.com/chd-rasters/imerg-sync/internal/earthdata"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	creds := earthdata.Credentials{
		Username: os.Getenv("IMERG_USERNAME"),
		Password: os.Getenv("IMERG_PASSWORD"),
	}
	if err := creds.Validate(); err != nil {
		logger.Error("missing credentials", "error", err)
		os.Exit(1)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		logger.Error("cannot resolve home directory", "error", err)
		os.Exit(1)
	}

	paths, err := earthdata.WritePrerequisiteFiles(home, creds)
	if err != nil {
		logger.Error("failed to write prerequisite files", "error", err)
		os.Exit(1)
	}
	for _, p := range paths {
		logger.Info("wrote", "path", p)
	}
}

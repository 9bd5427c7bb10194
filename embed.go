package main

import (
	"embed"
	"io/fs"
)

//go:embed all:frontend
var frontendFiles embed.FS

// frontendFS returns the monitor page tree rooted at "frontend".
func frontendFS() (fs.FS, error) {
	return fs.Sub(frontendFiles, "frontend")
}

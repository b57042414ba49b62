// Package web holds the page served by the monitor.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// DevModeEnv names the environment variable that makes the monitor serve
// the page from the source tree instead of the embedded copy.
const DevModeEnv = "SKRM_MONITOR_DEV"

//go:embed dist/*
var dist embed.FS

// Assets returns the page assets.
func Assets() http.FileSystem {
	if dir, ok := sourceDir(); ok {
		fmt.Fprintf(os.Stderr, "Monitor serves assets from %s\n", dir)
		return http.Dir(dir)
	}

	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}

// sourceDir returns the dist directory next to this file when the
// development mode is on.
func sourceDir() (string, bool) {
	on, err := strconv.ParseBool(os.Getenv(DevModeEnv))
	if err != nil || !on {
		return "", false
	}

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot locate the monitor assets")
	}

	return filepath.Join(filepath.Dir(file), "dist"), true
}

// Package main is the entry point of the camphub API server.
package main

import (
	"camphub/internal"
)

func main() {
	internal.Init()
}

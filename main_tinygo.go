//go:build tinygo

package main

import (
	"memclock/app"
	"memclock/hal"
)

func main() {
	app.Run(hal.New(), app.DefaultConfig())
}

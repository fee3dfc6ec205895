// Package main is the entry point for reelmark.
package main

import (
	"github.com/reelmark/reelmark/cmd"
	"github.com/reelmark/reelmark/config"
	"github.com/reelmark/reelmark/internal/cache"
	"github.com/reelmark/reelmark/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go cache.CollectGarbage()

	cmd.Execute()
}

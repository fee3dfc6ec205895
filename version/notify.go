package version

import (
	"fmt"

	"github.com/reelmark/reelmark/color"
	"github.com/reelmark/reelmark/constant"
	"github.com/reelmark/reelmark/icon"
	"github.com/reelmark/reelmark/key"
	"github.com/reelmark/reelmark/style"
	"github.com/reelmark/reelmark/util"
	"github.com/spf13/viper"
)

// Notify prints a notice when a newer release exists. Lookup failures are
// silent.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Loading)))
	version, err := Latest()
	erase()
	if err != nil {
		return
	}
	if comp, err := Compare(version, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/reelmark/reelmark/releases/tag/v"+version),
	)
}

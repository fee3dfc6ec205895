package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/reelmark/reelmark/config"
	"github.com/reelmark/reelmark/intent"
	"github.com/reelmark/reelmark/key"
	"github.com/reelmark/reelmark/log"
	"github.com/reelmark/reelmark/network"
	"github.com/reelmark/reelmark/open"
	"github.com/reelmark/reelmark/player"
	"github.com/reelmark/reelmark/probe"
	"github.com/reelmark/reelmark/renderer"
	"github.com/reelmark/reelmark/resilience"
	"github.com/reelmark/reelmark/router"
	"github.com/reelmark/reelmark/session"
	"github.com/reelmark/reelmark/source"
	"github.com/reelmark/reelmark/tui"
	"github.com/reelmark/reelmark/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("browser", "b", false, "Open the link in the system browser instead of playing it")
	cmd.Flags().IntP("volume", "V", -1, "Initial volume in percent (0-100)")
	cmd.Flags().Bool("paused", false, "Load the source without starting playback")
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation asked before restricted content")
}

func init() {
	rootCmd.AddCommand(playCmd)
	addPlayFlags(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play [url or file]",
	Short: "Play a video link or local file in the terminal player",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runPlay(cmd, args[0])
	},
}

func runPlay(cmd *cobra.Command, input string) {
	desc := source.Classify(input)

	if lo.Must(cmd.Flags().GetBool("browser")) {
		handleErr(open.Descriptor(desc))
		return
	}

	if !desc.Playable() {
		handleErr(&session.UnsupportedError{Descriptor: desc})
	}

	if desc.RequiresAgeGate && !lo.Must(cmd.Flags().GetBool("yes")) {
		confirm := survey.Confirm{
			Message: fmt.Sprintf("%s may host age-restricted content. Continue?", desc.PlatformLabel),
			Default: false,
		}
		var response bool
		handleErr(survey.AskOne(&confirm, &response))
		if !response {
			return
		}
	}

	if router.Route(desc) == router.TargetNative {
		CheckDependencies()
	}

	volume := config.DefaultVolume()
	if v := lo.Must(cmd.Flags().GetInt("volume")); v >= 0 {
		volume = float64(v) / 100
	}

	s := newSession(
		session.WithVolume(volume),
		session.WithAutoplay(!lo.Must(cmd.Flags().GetBool("paused"))),
	)
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn(err)
		}
	}()

	step := float64(viper.GetInt(key.PlayerSeekStep))
	steps := intent.DefaultSteps()
	if step > 0 {
		steps.Seek = step
	}

	handleErr(tui.Run(&tui.Options{
		Input:  input,
		Player: s,
		Steps:  steps,
	}))
}

// newSession wires a session from configuration: mpv for native sources, a
// rod-driven browser tab for embedded ones and the probe in front of mpv.
func newSession(opts ...session.Option) *session.Session {
	var prober player.Prober
	if viper.GetBool(key.ProbeEnable) {
		client := network.NewClient(viper.GetBool(key.ProbeTLSFingerprint))
		prober = probe.New(client, probe.WithCache(true))
	}

	surfaces := func() (renderer.Surface, error) {
		return renderer.NewRodSurface(renderer.RodOptions{
			Headless: viper.GetBool(key.RendererHeadless),
			Bin:      viper.GetString(key.RendererBrowserBin),
			DataDir:  where.Browser(),
		})
	}

	base := []session.Option{
		session.WithGate(session.TierGateFromConfig()),
		session.WithPolicy(resilience.PolicyFromConfig()),
		session.WithVolume(config.DefaultVolume()),
		session.WithHistory(viper.GetBool(key.HistorySaveOnPlay)),
		session.WithIntervals(config.PollInterval(), config.StatusInterval()),
		session.WithSurfaceFactory(surfaces),
	}

	return session.New(router.New(router.MPVEngines, prober), append(base, opts...)...)
}

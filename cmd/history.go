package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/reelmark/reelmark/color"
	"github.com/reelmark/reelmark/history"
	"github.com/reelmark/reelmark/icon"
	"github.com/reelmark/reelmark/source"
	"github.com/reelmark/reelmark/style"
	"github.com/reelmark/reelmark/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List remembered playback positions",
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := history.All()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("No history yet"))
			return
		}

		for _, e := range entries {
			position := util.FormatSeconds(e.Position)
			if e.Duration > 0 {
				position += " / " + util.FormatSeconds(e.Duration)
			}
			cmd.Printf("%s %s %s\n  %s\n",
				style.Fg(color.Purple)(e.Platform),
				style.Fg(color.Yellow)(position),
				style.Faint(e.UpdatedAt.Format("2006-01-02 15:04")),
				e.Input,
			)
		}
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove [url or file]",
	Short: "Forget the playback position of a source",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(history.Remove(source.Classify(args[0])))
		fmt.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), args[0])
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	historyClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every playback position",
	Run: func(cmd *cobra.Command, args []string) {
		if !lo.Must(cmd.Flags().GetBool("yes")) {
			confirm := survey.Confirm{
				Message: "Forget every playback position?",
				Default: false,
			}
			var response bool
			handleErr(survey.AskOne(&confirm, &response))
			if !response {
				return
			}
		}

		handleErr(history.Clear())
		fmt.Printf("%s history cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

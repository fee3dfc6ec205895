package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/reelmark/reelmark/icon"
	"github.com/reelmark/reelmark/key"
	"github.com/reelmark/reelmark/style"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.SetOut(os.Stdout)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the native engine and the embedded browser are available",
	Run: func(cmd *cobra.Command, args []string) {
		ok := true

		if path, err := exec.LookPath("mpv"); err != nil {
			ok = false
			printMissingDependencyError("mpv")
		} else {
			cmd.Printf("%s mpv %s\n", icon.Get(icon.Success), style.Faint(path))
		}

		if bin, found := browserBinary(); found {
			cmd.Printf("%s browser %s\n", icon.Get(icon.Success), style.Faint(bin))
		} else {
			cmd.Printf("%s browser %s\n", icon.Get(icon.Loading), style.Faint("not found, it will be downloaded on first use"))
		}

		if !ok {
			os.Exit(1)
		}
	},
}

// CheckDependencies exits when mpv is not installed.
func CheckDependencies() {
	if _, err := exec.LookPath("mpv"); err != nil {
		printMissingDependencyError("mpv")
		os.Exit(1)
	}
}

func browserBinary() (string, bool) {
	if bin := viper.GetString(key.RendererBrowserBin); bin != "" {
		_, err := os.Stat(bin)
		return bin, err == nil
	}
	return launcher.LookPath()
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case "darwin":
		installCmd = "brew install " + dep
	case "linux":
		installCmd = "sudo apt install " + dep
	case "windows":
		installCmd = "scoop install " + dep
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}

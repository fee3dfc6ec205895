// Package open hands links and files to the desktop's default handler, for
// sources the user would rather watch outside the terminal.
package open

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/reelmark/reelmark/constant"
	"github.com/reelmark/reelmark/source"
)

// ErrUnsupportedOS is returned where no default handler is known.
var ErrUnsupportedOS = fmt.Errorf("no default handler on %s", runtime.GOOS)

// Start launches the default handler for target and returns without waiting.
func Start(target string) error {
	cmd, ok := handler(runtime.GOOS, target)
	if !ok {
		return ErrUnsupportedOS
	}
	return cmd.Start()
}

// Descriptor opens the page or file a classified input came from.
func Descriptor(desc source.Descriptor) error {
	target, err := Target(desc, runtime.GOOS)
	if err != nil {
		return err
	}
	return Start(target)
}

// Target picks what to hand over for desc. The original input is preferred
// so the user lands on the page they pasted, not on a bare embed.
func Target(desc source.Descriptor, goos string) (string, error) {
	input := strings.TrimSpace(desc.Input)
	if input == "" {
		return "", errors.New("nothing to open")
	}
	if strings.HasPrefix(strings.ToLower(input), "content://") && goos != constant.Android {
		return "", fmt.Errorf("content references only resolve on %s", constant.Android)
	}
	if desc.Local && !strings.Contains(input, "://") {
		return desc.Target, nil
	}
	return input, nil
}

func handler(goos, target string) (*exec.Cmd, bool) {
	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", target), true
	case constant.Darwin:
		return exec.Command("open", target), true
	case constant.Linux:
		return exec.Command("xdg-open", target), true
	case constant.Android:
		return exec.Command("termux-open", target), true
	default:
		return nil, false
	}
}

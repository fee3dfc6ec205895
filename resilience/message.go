package resilience

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/log"
	"github.com/reelmark/reelmark/source"
	"github.com/reelmark/reelmark/util"
)

// Failure is a terminal load or playback failure. Its Error text is safe to
// show to the user; the underlying cause is kept for logs.
type Failure struct {
	Verdict
	Platform string
	Attempts int
	Message  string
	Err      error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// Describe renders the user-facing message for a verdict on desc after attempts.
func Describe(v Verdict, desc source.Descriptor, attempts int) string {
	r, ok := rules[v.Category]
	if !ok {
		return control.DefaultMessage
	}

	var b strings.Builder
	subject := desc.PlatformLabel
	if subject == "" {
		subject = "This source"
	}
	fmt.Fprintf(&b, "%s %s", subject, r.summary)
	if v.Category == CategoryServer && v.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", v.Status)
	}
	if attempts > 0 {
		fmt.Fprintf(&b, " after %s", util.Quantify(attempts, "attempt", "attempts"))
	}
	b.WriteString(".")
	if len(r.causes) > 0 {
		fmt.Fprintf(&b, " Likely causes: %s.", strings.Join(r.causes, "; "))
	}
	if len(r.steps) > 0 {
		fmt.Fprintf(&b, " Next steps: %s.", strings.Join(r.steps, ", or "))
	}
	return b.String()
}

// Describer returns the message function adapters use for desc. Failures the
// engine already described keep their message; anything else, such as an
// error after playback started, is classified here.
func Describer(desc source.Descriptor) func(error) string {
	return func(err error) string {
		var failure *Failure
		if errors.As(err, &failure) {
			return failure.Message
		}
		log.Errorf("%s: %v", desc, err)
		return Describe(Classify(err, desc), desc, 0)
	}
}

package inline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/reelmark/reelmark/router"
	"github.com/reelmark/reelmark/source"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Filter selects which classified inputs are reported.
type Filter func(source.Descriptor) bool

// Prober checks that a native target is reachable.
type Prober interface {
	Probe(ctx context.Context, target string) error
}

type Options struct {
	Out    io.Writer
	Inputs []string
	Json   bool
	Prober mo.Option[Prober]
	Filter mo.Option[Filter]
}

// ParseFilter builds a Filter from its command-line description:
//
//	all            every input
//	playable       inputs some backend can attempt
//	native         inputs routed to the native engine
//	embedded       inputs routed to the embedded renderer
//	unsupported    inputs no backend can play
//	kind:<kind>    inputs of one source kind
//	@<text>@       inputs whose platform label contains text
func ParseFilter(description string) (Filter, error) {
	switch description {
	case "all":
		return func(source.Descriptor) bool { return true }, nil
	case "playable":
		return source.Descriptor.Playable, nil
	case "native", "embedded", "unsupported":
		target := map[string]router.Target{
			"native":      router.TargetNative,
			"embedded":    router.TargetEmbedded,
			"unsupported": router.TargetUnsupported,
		}[description]
		return func(d source.Descriptor) bool { return router.Route(d) == target }, nil
	}

	if kind, ok := strings.CutPrefix(description, "kind:"); ok {
		if !lo.Contains(source.Kinds(), source.Kind(kind)) {
			return nil, fmt.Errorf("unknown kind: %s", kind)
		}
		return func(d source.Descriptor) bool { return d.Kind == source.Kind(kind) }, nil
	}

	if len(description) > 2 && strings.HasPrefix(description, "@") && strings.HasSuffix(description, "@") {
		sub := strings.ToLower(description[1 : len(description)-1])
		return func(d source.Descriptor) bool {
			return strings.Contains(strings.ToLower(d.PlatformLabel), sub)
		}, nil
	}

	return nil, fmt.Errorf("invalid filter: %s", description)
}

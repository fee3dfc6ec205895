package inline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/reelmark/reelmark/router"
	"github.com/reelmark/reelmark/source"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type stubProber struct {
	err     error
	targets []string
}

func (p *stubProber) Probe(_ context.Context, target string) error {
	p.targets = append(p.targets, target)
	return p.err
}

var inputs = []string{
	"https://cdn.example.com/movie.mp4",
	"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	"https://www.netflix.com/watch/80100172",
	"not a url",
}

func run(options *Options) (Output, string) {
	var buf bytes.Buffer
	options.Out = &buf
	So(Run(context.Background(), options), ShouldBeNil)

	var output Output
	if options.Json {
		So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
	}
	return output, buf.String()
}

func TestRun(t *testing.T) {
	Convey("Given a mixed list of inputs", t, func() {
		Convey("JSON output should carry every classification and route", func() {
			output, _ := run(&Options{Inputs: inputs, Json: true})
			So(output.Result, ShouldHaveLength, 4)
			So(output.Result[0].Route, ShouldEqual, router.TargetNative)
			So(output.Result[1].Route, ShouldEqual, router.TargetEmbedded)
			So(output.Result[1].Descriptor.Platform, ShouldEqual, "youtube")
			So(output.Result[2].Descriptor.Kind, ShouldEqual, source.KindUnsupportedDRM)
			So(output.Result[3].Descriptor.Kind, ShouldEqual, source.KindUnrecognized)
			So(output.Result[0].Reachable, ShouldBeNil)
		})

		Convey("An empty selection should still be valid JSON", func() {
			output, raw := run(&Options{Inputs: nil, Json: true})
			So(output.Result, ShouldHaveLength, 0)
			So(raw, ShouldContainSubstring, `"result":[]`)
		})

		Convey("Plain output should print one line per input", func() {
			_, raw := run(&Options{Inputs: inputs})
			lines := strings.Split(strings.TrimSpace(raw), "\n")
			So(lines, ShouldHaveLength, 4)
			So(lines[0], ShouldStartWith, inputs[0]+"\t")
			So(lines[2], ShouldContainSubstring, "DRM")
		})

		Convey("Only native targets should be probed", func() {
			prober := &stubProber{err: errors.New("http 404")}
			output, _ := run(&Options{Inputs: inputs, Json: true, Prober: mo.Some[Prober](prober)})
			So(prober.targets, ShouldResemble, []string{"https://cdn.example.com/movie.mp4"})
			So(*output.Result[0].Reachable, ShouldBeFalse)
			So(output.Result[0].ProbeError, ShouldEqual, "http 404")
			So(output.Result[1].Reachable, ShouldBeNil)
		})

		Convey("Filters should drop unselected inputs", func() {
			filter, err := ParseFilter("embedded")
			So(err, ShouldBeNil)
			output, _ := run(&Options{Inputs: inputs, Json: true, Filter: mo.Some(filter)})
			So(output.Result, ShouldHaveLength, 1)
			So(output.Result[0].Descriptor.Platform, ShouldEqual, "youtube")
		})
	})
}

func TestParseFilter(t *testing.T) {
	Convey("Given filter descriptions", t, func() {
		direct := source.Classify("https://cdn.example.com/movie.mp4")
		drm := source.Classify("https://www.netflix.com/watch/80100172")

		Convey("Named filters should select by route or playability", func() {
			playable, err := ParseFilter("playable")
			So(err, ShouldBeNil)
			So(playable(direct), ShouldBeTrue)
			So(playable(drm), ShouldBeFalse)

			unsupported, err := ParseFilter("unsupported")
			So(err, ShouldBeNil)
			So(unsupported(drm), ShouldBeTrue)
		})

		Convey("Kind filters should validate the kind", func() {
			f, err := ParseFilter("kind:direct-file")
			So(err, ShouldBeNil)
			So(f(direct), ShouldBeTrue)

			_, err = ParseFilter("kind:hologram")
			So(err, ShouldNotBeNil)
		})

		Convey("Label filters should match case-insensitively", func() {
			f, err := ParseFilter("@netflix@")
			So(err, ShouldBeNil)
			So(f(drm), ShouldBeTrue)
			So(f(direct), ShouldBeFalse)
		})

		Convey("Garbage should be rejected", func() {
			_, err := ParseFilter("sometimes")
			So(err, ShouldNotBeNil)
		})
	})
}

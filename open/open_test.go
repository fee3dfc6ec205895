package open

import (
	"testing"

	"github.com/reelmark/reelmark/constant"
	"github.com/reelmark/reelmark/source"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTarget(t *testing.T) {
	Convey("Given classified inputs", t, func() {
		Convey("Web pages open as pasted", func() {
			desc := source.Classify("https://www.youtube.com/shorts/dQw4w9WgXcQ")
			target, err := Target(desc, constant.Linux)
			So(err, ShouldBeNil)
			So(target, ShouldEqual, "https://www.youtube.com/shorts/dQw4w9WgXcQ")
		})

		Convey("Bare paths open the cleaned path", func() {
			desc := source.Classify("/home/me/Videos/clip.mp4")
			target, err := Target(desc, constant.Linux)
			So(err, ShouldBeNil)
			So(target, ShouldEqual, desc.Target)
		})

		Convey("Content references need android", func() {
			desc := source.Classify("content://media/external/video/42.mp4")
			_, err := Target(desc, constant.Linux)
			So(err, ShouldNotBeNil)

			target, err := Target(desc, constant.Android)
			So(err, ShouldBeNil)
			So(target, ShouldEqual, "content://media/external/video/42.mp4")
		})

		Convey("Empty input is refused", func() {
			_, err := Target(source.Classify(""), constant.Linux)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Known platforms have a handler", t, func() {
		for _, goos := range []string{constant.Windows, constant.Darwin, constant.Linux, constant.Android} {
			_, ok := handler(goos, "https://example.com")
			So(ok, ShouldBeTrue)
		}

		_, ok := handler("plan9", "https://example.com")
		So(ok, ShouldBeFalse)
	})
}

package icon

import (
	"testing"

	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given a registered icon", t, func() {
		target := Play

		Convey("It renders correctly for each variant", func() {
			for _, variant := range AvailableVariants() {
				Convey("variant="+variant, func() {
					viper.Set(key.IconsVariant, variant)
					So(Get(target), ShouldNotBeEmpty)
				})
			}
		})

		Convey("It returns empty for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			So(Get(target), ShouldBeEmpty)
		})
	})

	Convey("Every icon should have every variant", t, func() {
		for i, d := range icons {
			So(i, ShouldBeGreaterThan, 0)
			So(d.emoji, ShouldNotBeEmpty)
			So(d.nerd, ShouldNotBeEmpty)
			So(d.plain, ShouldNotBeEmpty)
			So(d.kaomoji, ShouldNotBeEmpty)
			So(d.squares, ShouldNotBeEmpty)
		}
	})

	Convey("Unknown icons should render empty", t, func() {
		viper.Set(key.IconsVariant, "plain")
		So(Get(Icon(999)), ShouldBeEmpty)
	})
}

func TestForState(t *testing.T) {
	Convey("Each playback state should map to an icon", t, func() {
		So(ForState(control.StatePlaying), ShouldEqual, Play)
		So(ForState(control.StatePaused), ShouldEqual, Pause)
		So(ForState(control.StateBuffering), ShouldEqual, Loading)
		So(ForState(control.StateEnded), ShouldEqual, Ended)
		So(ForState(control.StateError), ShouldEqual, Fail)
		So(ForState(control.StateIdle), ShouldEqual, Idle)
	})
}

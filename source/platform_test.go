package source

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestYouTubeCanonicalization(t *testing.T) {
	Convey("Every YouTube URL shape resolves to the same id", t, func() {
		shapes := []string{
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			"https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42",
			"https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			"https://music.youtube.com/watch?v=dQw4w9WgXcQ&list=RD",
			"https://youtu.be/dQw4w9WgXcQ?si=xyz",
			"https://www.youtube.com/embed/dQw4w9WgXcQ",
			"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ?rel=0",
			"https://www.youtube.com/shorts/dQw4w9WgXcQ",
			"https://www.youtube.com/live/dQw4w9WgXcQ?feature=shared",
			"https://www.youtube.com/v/dQw4w9WgXcQ",
			"youtu.be/dQw4w9WgXcQ",
		}
		for _, shape := range shapes {
			d := Classify(shape)
			So(d.Kind, ShouldEqual, KindPlatformEmbed)
			So(d.Platform, ShouldEqual, "youtube")
			So(d.ExtractedID.OrEmpty(), ShouldEqual, "dQw4w9WgXcQ")
		}
	})

	Convey("Pages without a video id stay embeddable without an id", t, func() {
		d := Classify("https://www.youtube.com/@somechannel")
		So(d.Kind, ShouldEqual, KindPlatformEmbed)
		So(d.ExtractedID.IsPresent(), ShouldBeFalse)
		So(d.EmbedURL(), ShouldEqual, "https://www.youtube.com/@somechannel")
	})

	Convey("Malformed ids are rejected", t, func() {
		d := Classify("https://www.youtube.com/watch?v=short")
		So(d.ExtractedID.IsPresent(), ShouldBeFalse)
	})

	Convey("The embed URL enables the JS API", t, func() {
		d := Classify("https://youtu.be/dQw4w9WgXcQ")
		So(d.EmbedURL(), ShouldStartWith, "https://www.youtube.com/embed/dQw4w9WgXcQ?enablejsapi=1")
	})
}

func TestPlatformIDs(t *testing.T) {
	Convey("Given platform URLs", t, func() {
		cases := []struct {
			url, platform, id string
		}{
			{"https://vimeo.com/76979871", "vimeo", "76979871"},
			{"https://player.vimeo.com/video/76979871?h=abc", "vimeo", "76979871"},
			{"https://vimeo.com/channels/staffpicks/76979871", "vimeo", "76979871"},
			{"https://www.twitch.tv/videos/1234567", "twitch", "v1234567"},
			{"https://www.twitch.tv/SomeStreamer", "twitch", "somestreamer"},
			{"https://www.dailymotion.com/video/x8abcd1", "dailymotion", "x8abcd1"},
			{"https://dai.ly/x8abcd1", "dailymotion", "x8abcd1"},
			{"https://rumble.com/embed/v4abcd/", "rumble", "v4abcd"},
			{"https://www.bilibili.com/video/BV1xx411c7mD", "bilibili", "BV1xx411c7mD"},
			{"https://x.com/user/status/1790000000000000000", "twitter", "1790000000000000000"},
			{"https://twitter.com/user/status/1790000000000000000", "twitter", "1790000000000000000"},
			{"https://www.instagram.com/reel/C7abcDEF12/", "instagram", "C7abcDEF12"},
			{"https://www.tiktok.com/@user/video/7300000000000000000", "tiktok", "7300000000000000000"},
			{"https://www.facebook.com/watch/?v=1020304050", "facebook", "1020304050"},
			{"https://www.facebook.com/somepage/videos/1020304050/", "facebook", "1020304050"},
		}

		for _, c := range cases {
			Convey(c.url, func() {
				d := Classify(c.url)
				So(d.Kind, ShouldEqual, KindPlatformEmbed)
				So(d.Platform, ShouldEqual, c.platform)
				So(d.ExtractedID.OrEmpty(), ShouldEqual, c.id)
				So(d.RequiresEmbeddedRenderer, ShouldBeTrue)
			})
		}

		Convey("Odysee has no extractable id but is still an embed", func() {
			d := Classify("https://odysee.com/@chan:1/clip:2")
			So(d.Kind, ShouldEqual, KindPlatformEmbed)
			So(d.Platform, ShouldEqual, "odysee")
		})

		Convey("Twitch embeds pick channel or video players", func() {
			So(Classify("https://www.twitch.tv/videos/1234567").EmbedURL(), ShouldContainSubstring, "video=v1234567")
			So(Classify("https://www.twitch.tv/somestreamer").EmbedURL(), ShouldContainSubstring, "channel=somestreamer")
		})
	})
}

package player

import (
	"errors"
	"testing"

	"github.com/reelmark/reelmark/control"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		Convey("Accepts streaming schemes", func() {
			for _, u := range []string{
				"https://cdn.example.com/a.m3u8",
				"http://cdn.example.com/a.mp4",
				"rtmp://live.example.com/app/key",
				"rtsp://cam.local:554/stream",
			} {
				got, err := sanitizeMediaTarget(u)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, u)
			}
		})

		Convey("Rejects flags, control characters and foreign schemes", func() {
			for _, u := range []string{"", "--script=evil.lua", "https://a\n--b", "file:///etc/passwd", "javascript://x"} {
				_, err := sanitizeMediaTarget(u)
				So(err, ShouldNotBeNil)
			}
		})

		Convey("Cleans local paths", func() {
			got, err := sanitizeMediaTarget("/videos/../videos/clip.mp4")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "/videos/clip.mp4")
		})
	})
}

func TestMPVEvents(t *testing.T) {
	Convey("Given an mpv engine that has not started", t, func() {
		m := NewMPV("Some\tTitle\n")

		Convey("The title is flattened", func() {
			So(m.title, ShouldEqual, "Some Title")
		})

		Convey("Commands fail without a process", func() {
			So(m.SetPaused(true), ShouldNotBeNil)
			_, err := m.Snapshot()
			So(err, ShouldEqual, ErrEngineExited)
			So(m.Close(), ShouldBeNil)
		})

		Convey("Property changes are mirrored", func() {
			m.handleEvent(Event{Name: "pause", Data: false})
			m.handleEvent(Event{Name: "time-pos", Data: 12.5})
			m.handleEvent(Event{Name: "duration", Data: 60.0})
			m.handleEvent(Event{Name: "duration", Data: nil})
			So(m.mirror.Paused, ShouldBeFalse)
			So(m.mirror.Position, ShouldEqual, 12.5)
			So(m.mirror.Duration, ShouldEqual, 0)
		})

		Convey("file-loaded resolves a pending open", func() {
			waiter := make(chan error, 1)
			m.waiter = waiter
			m.handleEvent(Event{Name: "file-loaded"})
			So(<-waiter, ShouldBeNil)
			So(m.waiter, ShouldBeNil)
		})

		Convey("end-file errors resolve a pending open", func() {
			waiter := make(chan error, 1)
			m.waiter = waiter
			m.handleEvent(Event{Name: "end-file", Reason: "error", FileError: "unrecognized file format"})
			So(errors.Is(<-waiter, control.ErrMalformedStream), ShouldBeTrue)
		})

		Convey("An abandoned open stops playback only while it is current", func() {
			stops := 0
			stop := func() { stops++ }

			abandoned := make(chan error, 1)
			retry := make(chan error, 1)
			m.waiter = retry
			So(m.abandon(abandoned, stop), ShouldBeFalse)
			So(stops, ShouldEqual, 0)
			So(m.waiter, ShouldEqual, retry)

			So(m.abandon(retry, stop), ShouldBeTrue)
			So(stops, ShouldEqual, 1)
			So(m.waiter, ShouldBeNil)
		})

		Convey("end-file errors after loading become a failure", func() {
			m.handleEvent(Event{Name: "end-file", Reason: "error", FileError: "network error"})
			So(m.mirror.Failure, ShouldNotBeNil)

			m.handleEvent(Event{Name: "end-file", Reason: "stop"})
			So(m.mirror.Failure, ShouldNotBeNil)
		})
	})
}

func TestParseEvent(t *testing.T) {
	Convey("parseEvent", t, func() {
		ev, ok := parseEvent(`{"event":"property-change","id":1,"name":"time-pos","data":3.5}`)
		So(ok, ShouldBeTrue)
		So(ev.Name, ShouldEqual, "time-pos")
		So(ev.Data, ShouldEqual, 3.5)

		ev, ok = parseEvent(`{"event":"end-file","reason":"error","file_error":"loading failed"}`)
		So(ok, ShouldBeTrue)
		So(ev.Reason, ShouldEqual, "error")
		So(ev.FileError, ShouldEqual, "loading failed")

		_, ok = parseEvent(`{"data":null,"error":"success","request_id":0}`)
		So(ok, ShouldBeFalse)

		_, ok = parseEvent(`not json`)
		So(ok, ShouldBeFalse)
	})
}

func TestDecodeResponse(t *testing.T) {
	Convey("decodeResponse", t, func() {
		Convey("Skips interleaved events", func() {
			data, err := decodeResponse([]byte("{\"event\":\"pause\"}\n{\"data\":42.0,\"error\":\"success\"}\n"))
			So(err, ShouldBeNil)
			So(data, ShouldEqual, 42.0)
		})

		Convey("Surfaces mpv errors", func() {
			_, err := decodeResponse([]byte(`{"error":"property unavailable"}`))
			So(isPropertyError(err), ShouldBeTrue)
		})

		Convey("Rejects reads without a reply", func() {
			_, err := decodeResponse([]byte(`{"event":"idle"}`))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestHeaderFields(t *testing.T) {
	Convey("headerFields renders a sorted list", t, func() {
		So(headerFields(nil), ShouldEqual, "")
		So(headerFields(map[string]string{
			"User-Agent": "reelmark",
			"Referer":    "https://example.com/a,b",
		}), ShouldEqual, "Referer: https://example.com/a%2Cb,User-Agent: reelmark")
	})
}

package renderer

import (
	"fmt"

	"github.com/reelmark/reelmark/source"
)

// Command is a remote-control action understood by every script family.
type Command string

const (
	CommandPlay           Command = "play"
	CommandPause          Command = "pause"
	CommandSeek           Command = "seek"
	CommandVolume         Command = "volume"
	CommandRate           Command = "rate"
	CommandMute           Command = "mute"
	CommandUnmute         Command = "unmute"
	CommandFullscreen     Command = "fullscreen"
	CommandExitFullscreen Command = "exit-fullscreen"
	CommandStatus         Command = "status"
)

// Family groups platforms whose embed pages expose the same control API.
type Family string

const (
	FamilyYouTube Family = "youtube"
	FamilyHTML5   Family = "html5"
)

// FamilyFor picks the script family for a descriptor. Platforms without a
// dedicated player API are driven through their <video> element.
func FamilyFor(desc source.Descriptor) Family {
	if desc.Platform == "youtube" {
		return FamilyYouTube
	}
	return FamilyHTML5
}

// Script returns the function expression for command in family, falling back
// to the html5 script.
func Script(family Family, command Command) string {
	if s, ok := scripts[family][command]; ok {
		return s
	}
	return scripts[FamilyHTML5][command]
}

const findVideo = `const v = document.querySelector('video'); if (!v) return 'missing';`

// html5Status serialises the first <video>. JSON.stringify turns NaN and
// Infinity into null, which the adapter reads as "unknown".
const html5Status = `const v = document.querySelector('video');
	if (!v) return JSON.stringify({present: false});
	return JSON.stringify({
		present: true,
		paused: v.paused,
		ended: v.ended,
		waiting: !v.paused && v.readyState < 3,
		time: v.currentTime,
		duration: v.duration,
		volume: v.volume,
		muted: v.muted,
		rate: v.playbackRate,
		error: v.error ? (v.error.message || ('media error ' + v.error.code)) : null,
	});`

var html5 = map[Command]string{
	CommandPlay:   fn("", findVideo+` v.play().catch(() => {}); return 'ok';`),
	CommandPause:  fn("", findVideo+` v.pause(); return 'ok';`),
	CommandSeek:   fn("t", findVideo+` v.currentTime = t; return 'ok';`),
	CommandVolume: fn("x", findVideo+` v.volume = x; return 'ok';`),
	CommandRate:   fn("r", findVideo+` v.playbackRate = r; return 'ok';`),
	CommandMute:   fn("", findVideo+` v.muted = true; return 'ok';`),
	CommandUnmute: fn("", findVideo+` v.muted = false; return 'ok';`),
	CommandFullscreen: fn("", findVideo+`
		const req = v.requestFullscreen || v.webkitRequestFullscreen;
		if (req) req.call(v);
		return 'ok';`),
	CommandExitFullscreen: fn("", `if (document.fullscreenElement) document.exitFullscreen(); return 'ok';`),
	CommandStatus:         fn("", html5Status),
}

// youtube calls the movie_player API when the embed page exposes it.
func youtube(params, call string, fallback Command) string {
	body := html5[fallback]
	return fn(params, fmt.Sprintf(`const p = document.getElementById('movie_player');
	if (p && typeof p.playVideo === 'function') { %s }
	return (%s)(%s);`, call, body, params))
}

var scripts = map[Family]map[Command]string{
	FamilyHTML5: html5,
	FamilyYouTube: {
		CommandPlay:   youtube("", `p.playVideo(); return 'ok';`, CommandPlay),
		CommandPause:  youtube("", `p.pauseVideo(); return 'ok';`, CommandPause),
		CommandSeek:   youtube("t", `p.seekTo(t, true); return 'ok';`, CommandSeek),
		CommandVolume: youtube("x", `p.setVolume(Math.round(x * 100)); return 'ok';`, CommandVolume),
		CommandRate:   youtube("r", `p.setPlaybackRate(r); return 'ok';`, CommandRate),
		CommandMute:   youtube("", `p.mute(); return 'ok';`, CommandMute),
		CommandUnmute: youtube("", `p.unMute(); return 'ok';`, CommandUnmute),
		// Player states: -1 unstarted, 0 ended, 1 playing, 2 paused, 3 buffering, 5 cued.
		CommandStatus: youtube("", `const s = p.getPlayerState();
		return JSON.stringify({
			present: true,
			paused: s !== 1 && s !== 3,
			ended: s === 0,
			waiting: s === 3,
			time: p.getCurrentTime(),
			duration: p.getDuration(),
			volume: p.getVolume() / 100,
			muted: p.isMuted(),
			rate: p.getPlaybackRate(),
			error: null,
		});`, CommandStatus),
	},
}

func fn(params, body string) string {
	return fmt.Sprintf("(%s) => { %s }", params, body)
}

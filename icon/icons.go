package icon

// Icon identifies a symbol.
type Icon int

const (
	Idle Icon = iota + 1
	Play
	Pause
	Loading
	Ended
	Fail
	Success
	Muted
	Volume
	Fullscreen
	Native
	Embedded
	Retry
)

var icons = map[Icon]*iconDef{
	Idle:       {emoji: "💤", nerd: "", plain: "-", kaomoji: "(-_-)", squares: "▫"},
	Play:       {emoji: "▶️", nerd: "", plain: ">", kaomoji: "(ﾉ◕ヮ◕)ﾉ", squares: "▶"},
	Pause:      {emoji: "⏸️", nerd: "", plain: "||", kaomoji: "(・_・)", squares: "⏸"},
	Loading:    {emoji: "⏳", nerd: "", plain: "...", kaomoji: "(￣▽￣)ゞ", squares: "▨"},
	Ended:      {emoji: "🏁", nerd: "", plain: "[end]", kaomoji: "(＾▽＾)", squares: "■"},
	Fail:       {emoji: "💀", nerd: "", plain: "x", kaomoji: "(╯°□°）╯︵ ┻━┻", squares: "🟥"},
	Success:    {emoji: "🎉", nerd: "", plain: "ok", kaomoji: "(ᵔ◡ᵔ)", squares: "🟩"},
	Muted:      {emoji: "🔇", nerd: "", plain: "[muted]", kaomoji: "(・×・)", squares: "▢"},
	Volume:     {emoji: "🔊", nerd: "", plain: "vol", kaomoji: "(°o°)", squares: "▣"},
	Fullscreen: {emoji: "🖥️", nerd: "", plain: "[ ]", kaomoji: "(⌐■_■)", squares: "⬜"},
	Native:     {emoji: "🎞️", nerd: "", plain: "native", kaomoji: "(◕‿◕)", squares: "🟦"},
	Embedded:   {emoji: "🌐", nerd: "", plain: "web", kaomoji: "(◠‿◠)", squares: "🟪"},
	Retry:      {emoji: "🔁", nerd: "", plain: "retry", kaomoji: "(¬_¬)", squares: "🟨"},
}

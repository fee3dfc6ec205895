package source

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/reelmark/reelmark/util"
	"github.com/samber/lo"
)

// platform describes a named origin matched by domain.
type platform struct {
	name    string
	label   string
	domains []string

	// extract returns the platform-native id of u, if any.
	extract func(u *url.URL) (string, bool)

	// embed builds the canonical embed page for an extracted id.
	embed func(id string) string
}

// hostMatches reports whether host is domain or one of its subdomains.
func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// drmPlatforms stream only through DRM-protected first-party apps.
var drmPlatforms = []platform{
	{name: "netflix", label: "Netflix", domains: []string{"netflix.com"}},
	{name: "disneyplus", label: "Disney+", domains: []string{"disneyplus.com"}},
	{name: "hulu", label: "Hulu", domains: []string{"hulu.com"}},
	{name: "primevideo", label: "Prime Video", domains: []string{"primevideo.com", "amazon.com/gp/video"}},
	{name: "max", label: "Max", domains: []string{"max.com", "hbomax.com"}},
	{name: "peacock", label: "Peacock", domains: []string{"peacocktv.com"}},
	{name: "paramountplus", label: "Paramount+", domains: []string{"paramountplus.com"}},
	{name: "appletv", label: "Apple TV+", domains: []string{"tv.apple.com"}},
	{name: "crunchyroll", label: "Crunchyroll", domains: []string{"crunchyroll.com"}},
}

// restrictedPlatforms serve age-restricted content and only play inside their own web player.
var restrictedPlatforms = []platform{
	{name: "pornhub", label: "Pornhub", domains: []string{"pornhub.com"}},
	{name: "xvideos", label: "XVideos", domains: []string{"xvideos.com"}},
	{name: "xhamster", label: "xHamster", domains: []string{"xhamster.com"}},
	{name: "xnxx", label: "XNXX", domains: []string{"xnxx.com"}},
	{name: "redtube", label: "RedTube", domains: []string{"redtube.com"}},
	{name: "youporn", label: "YouPorn", domains: []string{"youporn.com"}},
	{name: "spankbang", label: "SpankBang", domains: []string{"spankbang.com"}},
	{name: "eporner", label: "Eporner", domains: []string{"eporner.com"}},
}

var cloudPlatforms = []platform{
	{
		name:    "drive",
		label:   "Google Drive",
		domains: []string{"drive.google.com", "docs.google.com"},
		extract: func(u *url.URL) (string, bool) {
			if g := util.ReGroups(driveFilePattern, u.Path); g["id"] != "" {
				return g["id"], true
			}
			return validID(u.Query().Get("id"), driveIDPattern)
		},
		embed: func(id string) string {
			return "https://drive.google.com/file/d/" + id + "/preview"
		},
	},
	{
		name:    "dropbox",
		label:   "Dropbox",
		domains: []string{"dropbox.com", "dropboxusercontent.com"},
	},
}

var (
	youtubeIDPattern     = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	driveFilePattern     = regexp.MustCompile(`/file/d/(?P<id>[A-Za-z0-9_-]{10,})`)
	driveIDPattern       = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}$`)
	vimeoPattern         = regexp.MustCompile(`^/(?:video/|channels/[^/]+/|groups/[^/]+/videos/)?(?P<id>\d+)(?:/|$)`)
	twitchVideoPattern   = regexp.MustCompile(`^/videos/(?P<id>\d+)`)
	twitchChannelPattern = regexp.MustCompile(`^/(?P<id>[A-Za-z0-9_]{3,25})/?$`)
	dailymotionPattern   = regexp.MustCompile(`^/(?:video|embed/video)/(?P<id>[A-Za-z0-9]+)`)
	dailyShortPattern    = regexp.MustCompile(`^/(?P<id>[A-Za-z0-9]+)`)
	rumblePattern        = regexp.MustCompile(`^/embed/(?P<id>v[A-Za-z0-9]+)`)
	bilibiliPattern      = regexp.MustCompile(`/video/(?P<id>BV[A-Za-z0-9]{10})`)
	twitterPattern       = regexp.MustCompile(`/status(?:es)?/(?P<id>\d+)`)
	instagramPattern     = regexp.MustCompile(`^/(?:p|reel|reels|tv)/(?P<id>[A-Za-z0-9_-]+)`)
	tiktokPattern        = regexp.MustCompile(`/video/(?P<id>\d+)`)
	facebookPattern      = regexp.MustCompile(`/videos/(?:[^/]+/)?(?P<id>\d+)`)
)

// embedPlatforms are ordered; the first domain match wins.
var embedPlatforms = []platform{
	{
		name:    "youtube",
		label:   "YouTube",
		domains: []string{"youtube.com", "youtu.be", "youtube-nocookie.com"},
		extract: youtubeID,
		embed: func(id string) string {
			return "https://www.youtube.com/embed/" + id + "?enablejsapi=1&playsinline=1"
		},
	},
	{
		name:    "vimeo",
		label:   "Vimeo",
		domains: []string{"vimeo.com"},
		extract: groupExtractor(vimeoPattern),
		embed: func(id string) string {
			return "https://player.vimeo.com/video/" + id
		},
	},
	{
		name:    "twitch",
		label:   "Twitch",
		domains: []string{"twitch.tv"},
		extract: twitchID,
		embed: func(id string) string {
			if strings.HasPrefix(id, "v") && lo.EveryBy([]rune(id[1:]), isDigit) {
				return "https://player.twitch.tv/?video=" + id + "&parent=localhost"
			}
			return "https://player.twitch.tv/?channel=" + id + "&parent=localhost"
		},
	},
	{
		name:    "facebook",
		label:   "Facebook",
		domains: []string{"facebook.com", "fb.watch"},
		extract: func(u *url.URL) (string, bool) {
			if id, ok := validID(u.Query().Get("v"), digitsPattern); ok {
				return id, true
			}
			return groupExtractor(facebookPattern)(u)
		},
	},
	{
		name:    "dailymotion",
		label:   "Dailymotion",
		domains: []string{"dailymotion.com", "dai.ly"},
		extract: func(u *url.URL) (string, bool) {
			if hostMatches(canonicalHost(u.Host), "dai.ly") {
				return groupExtractor(dailyShortPattern)(u)
			}
			return groupExtractor(dailymotionPattern)(u)
		},
		embed: func(id string) string {
			return "https://www.dailymotion.com/embed/video/" + id
		},
	},
	{
		name:    "rumble",
		label:   "Rumble",
		domains: []string{"rumble.com"},
		extract: groupExtractor(rumblePattern),
		embed: func(id string) string {
			return "https://rumble.com/embed/" + id + "/"
		},
	},
	{
		name:    "odysee",
		label:   "Odysee",
		domains: []string{"odysee.com"},
	},
	{
		name:    "bilibili",
		label:   "Bilibili",
		domains: []string{"bilibili.com", "b23.tv"},
		extract: groupExtractor(bilibiliPattern),
		embed: func(id string) string {
			return "https://player.bilibili.com/player.html?bvid=" + id
		},
	},
	{
		name:    "twitter",
		label:   "X (Twitter)",
		domains: []string{"twitter.com", "x.com"},
		extract: groupExtractor(twitterPattern),
	},
	{
		name:    "instagram",
		label:   "Instagram",
		domains: []string{"instagram.com"},
		extract: groupExtractor(instagramPattern),
		embed: func(id string) string {
			return "https://www.instagram.com/p/" + id + "/embed"
		},
	},
	{
		name:    "tiktok",
		label:   "TikTok",
		domains: []string{"tiktok.com"},
		extract: groupExtractor(tiktokPattern),
		embed: func(id string) string {
			return "https://www.tiktok.com/embed/v2/" + id
		},
	},
}

var digitsPattern = regexp.MustCompile(`^\d+$`)

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func groupExtractor(pattern *regexp.Regexp) func(u *url.URL) (string, bool) {
	return func(u *url.URL) (string, bool) {
		id := util.ReGroups(pattern, u.Path)["id"]
		return id, id != ""
	}
}

func validID(candidate string, pattern *regexp.Regexp) (string, bool) {
	if candidate != "" && pattern.MatchString(candidate) {
		return candidate, true
	}
	return "", false
}

// youtubeID canonicalizes every known YouTube URL shape to the 11-character video id.
func youtubeID(u *url.URL) (string, bool) {
	segments := pathSegments(u.Path)

	if hostMatches(canonicalHost(u.Host), "youtu.be") {
		if len(segments) > 0 {
			return validID(segments[0], youtubeIDPattern)
		}
		return "", false
	}

	if id, ok := validID(u.Query().Get("v"), youtubeIDPattern); ok {
		return id, true
	}

	if len(segments) >= 2 {
		switch segments[0] {
		case "embed", "shorts", "live", "v", "e":
			return validID(segments[1], youtubeIDPattern)
		}
	}

	return "", false
}

// twitchID yields "v<digits>" for VODs and the channel login otherwise.
func twitchID(u *url.URL) (string, bool) {
	if id := util.ReGroups(twitchVideoPattern, u.Path)["id"]; id != "" {
		return "v" + id, true
	}
	if v := u.Query().Get("video"); v != "" {
		return "v" + strings.TrimPrefix(v, "v"), true
	}
	if c := u.Query().Get("channel"); c != "" {
		return strings.ToLower(c), true
	}
	if id := util.ReGroups(twitchChannelPattern, u.Path)["id"]; id != "" && !reservedTwitchPaths[strings.ToLower(id)] {
		return strings.ToLower(id), true
	}
	return "", false
}

var reservedTwitchPaths = map[string]bool{
	"directory": true, "downloads": true, "jobs": true, "p": true, "settings": true, "search": true,
}

func pathSegments(p string) []string {
	return lo.Filter(strings.Split(p, "/"), func(s string, _ int) bool { return s != "" })
}

func platformByName(name string) (platform, bool) {
	for _, table := range [][]platform{embedPlatforms, cloudPlatforms, restrictedPlatforms, drmPlatforms} {
		if p, ok := lo.Find(table, func(p platform) bool { return p.name == name }); ok {
			return p, true
		}
	}
	return platform{}, false
}

func findPlatform(table []platform, host, fullPath string) (platform, bool) {
	return lo.Find(table, func(p platform) bool {
		return lo.SomeBy(p.domains, func(domain string) bool {
			// Entries such as "amazon.com/gp/video" pin a path prefix as well as a host.
			if h, prefix, ok := strings.Cut(domain, "/"); ok {
				return hostMatches(host, h) && strings.HasPrefix(fullPath, "/"+prefix)
			}
			return hostMatches(host, domain)
		})
	})
}

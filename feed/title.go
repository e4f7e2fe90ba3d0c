package feed

import (
	"regexp"
	"strconv"
	"strings"
)

// Release is what can be recovered from a torrent release title like
// "[SubGroup] Show Name - 05 [1080p]". Fansub naming is only a convention,
// so every field is best-effort.
type Release struct {
	Group            string
	Resolution       string
	ShowName         string
	EpisodeMain      *int
	EpisodeSecondary *int
}

var (
	bracketedTitleRegex = regexp.MustCompile(`(\[(.+?)])(.+)(\[(.+?)])`)
	episodeRegex        = regexp.MustCompile(`(\d+)(v\d+)?[-~]?(\d+)?`)
	leadingTagRegex     = regexp.MustCompile(`^(?:\s*(?:\[[^\]]*]|\([^)]*\)))+`)
)

// ParseReleaseTitle extracts release attributes from a raw feed title. The
// bracketed "[group] name [attrs]" convention is tried first; anything else
// falls back to tag stripping plus episode extraction.
func ParseReleaseTitle(title string) Release {
	if release, ok := parseBracketed(title); ok {
		return release
	}
	return parseFallback(title)
}

func parseBracketed(title string) (Release, bool) {
	match := bracketedTitleRegex.FindStringSubmatch(title)
	if match == nil {
		return Release{}, false
	}

	name := strings.TrimSpace(match[3])
	main, secondary := episodeMatch(name)

	return Release{
		Group:            match[2],
		Resolution:       match[5],
		ShowName:         name,
		EpisodeMain:      main,
		EpisodeSecondary: secondary,
	}, true
}

func parseFallback(title string) Release {
	name := strings.TrimSpace(leadingTagRegex.ReplaceAllString(title, ""))
	if name == "" {
		name = title
	}

	main, secondary := episodeMatch(name)
	if main == nil {
		main, secondary = episodeMatch(title)
	}

	return Release{
		Group:            "Unknown",
		Resolution:       "Unknown",
		ShowName:         name,
		EpisodeMain:      main,
		EpisodeSecondary: secondary,
	}
}

// episodeMatch finds the last number-ish run before any parenthesised or
// bracketed attributes, interpreting "05", "05v2" and "01-12" style markers.
func episodeMatch(part string) (*int, *int) {
	if part == "" {
		return nil, nil
	}

	cut := len(part)
	for _, marker := range []string{"(", "["} {
		if idx := strings.Index(part[1:], marker); idx != -1 && idx+1 < cut {
			cut = idx + 1
		}
	}
	part = strings.TrimSpace(part[:cut])

	matches := episodeRegex.FindAllStringSubmatch(part, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	last := matches[len(matches)-1]

	main, err := strconv.Atoi(last[1])
	if err != nil {
		return nil, nil
	}

	var secondary *int
	if last[3] != "" {
		if s, err := strconv.Atoi(last[3]); err == nil {
			secondary = &s
		}
	}

	return &main, secondary
}

package catalog

import "regexp"

// sourcePatterns match the YouTube URL formats we accept and capture the
// 11-character video id in a group named "id".
var sourcePatterns = []*regexp.Regexp{
	// https://youtu.be/<id>
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/(?P<id>[A-Za-z0-9_-]{11})`),
	// https://www.youtube.com/watch?v=<id>
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=(?P<id>[A-Za-z0-9_-]{11})`),
	// https://www.youtube.com/embed/<id>
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/embed/(?P<id>[A-Za-z0-9_-]{11})`),
	// https://www.youtube.com/v/<id>
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/v/(?P<id>[A-Za-z0-9_-]{11})`),
	// https://www.youtube.com/shorts/<id>
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/shorts/(?P<id>[A-Za-z0-9_-]{11})`),
}

// ExtractSourceID pulls the external video id out of a submitted URL. It
// returns an empty string when no supported pattern matches.
func ExtractSourceID(url string) string {
	for _, pattern := range sourcePatterns {
		match := pattern.FindStringSubmatch(url)
		if match == nil {
			continue
		}
		for i, name := range pattern.SubexpNames() {
			if name == "id" {
				return match[i]
			}
		}
	}
	return ""
}

package models

// ResolutionOption is one selectable source for a player.
type ResolutionOption struct {
	Label               string `json:"label"`
	Value               string `json:"value"`
	SourceURL           string `json:"src"`
	RequiresEntitlement bool   `json:"premium"`
}

// VideoSources lists the per-resolution URLs of a video. Empty URLs are not offered.
type VideoSources struct {
	URL4K    string `json:"url_4k" toml:"url_4k"`
	URL2K    string `json:"url_2k" toml:"url_2k"`
	URL1080p string `json:"url_1080p" toml:"url_1080p"`
	URL720p  string `json:"url_720p" toml:"url_720p"`
	URL480p  string `json:"url_480p" toml:"url_480p"`
	VideoURL string `json:"video_url" toml:"video_url"`
}

// Resolutions returns the ordered options for a video, highest quality first.
//
// 4K, 2K and 1080p require entitlement. The original upload is offered as "Auto"
// when it is the only source or differs from every rendition.
func Resolutions(src VideoSources) []ResolutionOption {
	candidates := []ResolutionOption{
		{Label: "4K", Value: "4k", SourceURL: src.URL4K, RequiresEntitlement: true},
		{Label: "2K", Value: "2k", SourceURL: src.URL2K, RequiresEntitlement: true},
		{Label: "1080p", Value: "1080p", SourceURL: src.URL1080p, RequiresEntitlement: true},
		{Label: "720p", Value: "720p", SourceURL: src.URL720p},
		{Label: "480p", Value: "480p", SourceURL: src.URL480p},
	}

	var opts []ResolutionOption
	seen := map[string]bool{}
	for _, c := range candidates {
		if c.SourceURL == "" {
			continue
		}
		seen[c.SourceURL] = true
		opts = append(opts, c)
	}

	if src.VideoURL != "" && !seen[src.VideoURL] {
		opts = append(opts, ResolutionOption{Label: "Auto", Value: "auto", SourceURL: src.VideoURL})
	}
	return opts
}

// DefaultResolution picks 720p, else the first option without entitlement, else the last option.
//
// Returns -1 when opts is empty.
func DefaultResolution(opts []ResolutionOption) int {
	if len(opts) == 0 {
		return -1
	}
	for i, o := range opts {
		if o.Value == "720p" {
			return i
		}
	}
	for i, o := range opts {
		if !o.RequiresEntitlement {
			return i
		}
	}
	return len(opts) - 1
}

package netease

// SearchResponse is the envelope of the song search endpoint.
type SearchResponse struct {
	Code   int `json:"code"`
	Result struct {
		Songs     []Song `json:"songs"`
		SongCount int    `json:"songCount"`
	} `json:"result"`
}

// Song is one record from the search results.
type Song struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Artists  []Artist `json:"artists"`
	Duration int      `json:"duration"` // milliseconds
}

// Artist is one performer attached to a search record.
type Artist struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// LyricResponse is the envelope of the lyric endpoint. The klyric body
// carries karaoke word timing; lrc is the plain line-timed fallback.
type LyricResponse struct {
	Code   int `json:"code"`
	Lrc    Lyric `json:"lrc"`
	Klyric Lyric `json:"klyric"`
}

// Lyric is a single lyrics body within the lyric response.
type Lyric struct {
	Version int    `json:"version"`
	Lyric   string `json:"lyric"`
}

package musixmatch

// subtitleResponse is the envelope of the matcher.subtitle.get endpoint.
type subtitleResponse struct {
	Message struct {
		Header struct {
			StatusCode int `json:"status_code"`
		} `json:"header"`
		Body struct {
			Subtitle struct {
				SubtitleBody string `json:"subtitle_body"`
				Restricted   int    `json:"restricted"`
			} `json:"subtitle"`
		} `json:"body"`
	} `json:"message"`
}

// richsyncResponse is the envelope of the matcher.track.richsync.get
// endpoint. The richsync body is itself a JSON document, serialized into
// a string field.
type richsyncResponse struct {
	Message struct {
		Header struct {
			StatusCode int `json:"status_code"`
		} `json:"header"`
		Body struct {
			Richsync struct {
				RichsyncBody string `json:"richsync_body"`
				Restricted   int    `json:"restricted"`
			} `json:"richsync"`
		} `json:"body"`
	} `json:"message"`
}

// richsyncLine is one entry of the decoded richsync body. Times are in
// seconds; word offsets are relative to the line start.
type richsyncLine struct {
	Start float64 `json:"ts"`
	End   float64 `json:"te"`
	Text  string  `json:"x"`
	Words []struct {
		Chars  string  `json:"c"`
		Offset float64 `json:"o"`
	} `json:"l"`
}

// lyricsResponse is the envelope of the matcher.lyrics.get endpoint.
type lyricsResponse struct {
	Message struct {
		Header struct {
			StatusCode int `json:"status_code"`
		} `json:"header"`
		Body struct {
			Lyrics struct {
				LyricsBody   string `json:"lyrics_body"`
				Restricted   int    `json:"restricted"`
				Instrumental int    `json:"instrumental"`
			} `json:"lyrics"`
		} `json:"body"`
	} `json:"message"`
}

package genius

// searchResponse is the envelope of the Genius search endpoint.
type searchResponse struct {
	Meta struct {
		Status int `json:"status"`
	} `json:"meta"`
	Response struct {
		Hits []Hit `json:"hits"`
	} `json:"response"`
}

// Hit is one search hit; only song hits carry a usable result.
type Hit struct {
	Type   string `json:"type"`
	Result struct {
		ID            int    `json:"id"`
		Title         string `json:"title"`
		URL           string `json:"url"`
		PrimaryArtist struct {
			Name string `json:"name"`
		} `json:"primary_artist"`
	} `json:"result"`
}

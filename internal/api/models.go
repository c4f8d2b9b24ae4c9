package api

type AskRequest struct {
	Query string `json:"query" description:"Question about the loaded document"`
	K     int    `json:"k,omitempty" description:"Number of chunks to retrieve, defaults to the server setting"`
}

type Source struct {
	Position int     `json:"position"`
	Distance float64 `json:"distance"`
}

type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Chunks  int    `json:"chunks"`
}

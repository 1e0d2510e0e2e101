package assistant

// Wire types for the Gemini generateContent REST endpoint. Only the fields
// this package reads or writes are declared.

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	Tools             []tool    `json:"tools,omitempty"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

type groundingChunk struct {
	Web *struct {
		URI   string `json:"uri"`
		Title string `json:"title"`
	} `json:"web"`
}

type candidate struct {
	Content           *content `json:"content"`
	GroundingMetadata *struct {
		GroundingChunks []groundingChunk `json:"groundingChunks"`
	} `json:"groundingMetadata"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

// text concatenates the text parts of the first candidate.
func (r generateResponse) text() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}

// links returns the web URIs of the first candidate's grounding chunks in
// order, skipping chunks without one.
func (r generateResponse) links() []string {
	links := []string{}
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return links
	}
	for _, c := range r.Candidates[0].GroundingMetadata.GroundingChunks {
		if c.Web != nil && c.Web.URI != "" {
			links = append(links, c.Web.URI)
		}
	}
	return links
}

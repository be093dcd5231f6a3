package models

// RawDocument is a single uploaded file as received from the client.
type RawDocument struct {
	Name  string
	Bytes []byte
}

// ExtractedCorpus is the labeled, normalized text of a whole upload batch.
type ExtractedCorpus struct {
	Text      string   `json:"-"`
	Documents int      `json:"documents"`
	Failed    []string `json:"failed,omitempty"`
}

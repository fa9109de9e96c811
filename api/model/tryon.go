package model

// TryOnRequest carries the decoded multipart upload into the pipeline.
// ClothingImages preserves upload order; result indices refer to it.
type TryOnRequest struct {
	PersonImage    []byte
	ClothingImages [][]byte
	Size           string
}

type TryOnResult struct {
	Index int    `json:"index"`
	Image string `json:"image"`
}

type TryOnResponse struct {
	Success bool          `json:"success"`
	Size    string        `json:"size"`
	Results []TryOnResult `json:"results"`
	Logs    []string      `json:"logs"`
}

// ErrorResponse is the envelope for every failed request. Reason is the
// machine-readable token; Detail is for humans.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
	Reason  string `json:"reason,omitempty"`
}

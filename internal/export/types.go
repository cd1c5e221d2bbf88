package export

// ExportRequest asks the agent to write a session's caption document into a
// directory on this machine. Name overrides the session name as the
// filename stem.
type ExportRequest struct {
	OutputDir string `json:"output_dir"`
	Name      string `json:"name,omitempty"`
}

type ExportResponse struct {
	Status       string `json:"status"`
	OutputPath   string `json:"output_path"`
	CaptionCount int    `json:"caption_count"`
}

package model

// PRD is the metadata row recorded for every successfully stored upload.
// Rows are insert-only; FileURL encodes the storage key {user_id}/{id}.{ext}.
type PRD struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	FileURL string `json:"file_url"`
}

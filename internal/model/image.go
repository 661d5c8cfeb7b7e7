package model

// ImageListOptions narrows a membership-list read. FirstOnly wins over
// Limit and is what announcement previews use.
type ImageListOptions struct {
	Limit     int
	FirstOnly bool
}

type AddImagesRequest struct {
	ArticleID int64    `json:"article_id"`
	Images    []string `json:"images"` // base64-encoded payloads
}

type AddImagesResponse struct {
	ImageIDs []string `json:"image_ids"`
}

type RemoveImagesRequest struct {
	ArticleID int64    `json:"article_id"`
	ImageIDs  []string `json:"image_ids"`
}

type RemoveImagesResponse struct {
	Deleted []string `json:"deleted"`
}

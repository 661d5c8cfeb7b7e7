package model

type ArticleAnnouncement struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Announcement string `json:"announcement"`
	PreviewImage string `json:"preview_image,omitempty"`
}

type Article struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Body     string   `json:"body"`
	ImageIDs []string `json:"image_ids"`
}

// NewArticle is the client-supplied part of an article. The author is
// never taken from the request; it comes from the verified session.
type NewArticle struct {
	Title        string `json:"title"`
	Announcement string `json:"announcement"`
	Body         string `json:"body"`
}

type RemoveArticleRequest struct {
	ArticleID int64 `json:"article_id"`
}

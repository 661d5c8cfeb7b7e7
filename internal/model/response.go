package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ArticlesResponse struct {
	Articles []ArticleAnnouncement `json:"articles"`
}

type AuthorResponse struct {
	AuthorInfo *AuthorInfo `json:"author_info"`
}

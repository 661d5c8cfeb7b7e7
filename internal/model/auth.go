package model

type SignInRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	Login       string `json:"login"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Description  string
}

type AuthorInfo struct {
	Login       string `json:"login"`
	Description string `json:"description"`
}

package dto

type CredentialsRequestDTO struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"s3cret"`
}

type RegisterResponseDTO struct {
	Message string `json:"message" example:"User registered successfully"`
	UserID  int64  `json:"userId" example:"1"`
}

type LoginStatusDTO struct {
	LoggedIn bool `json:"loggedIn" example:"true"`
}

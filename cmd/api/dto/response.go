package dto

// ErrorResponseDTO는 공통 에러 응답 형식을 통일하기 위한 DTO이다.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"unauthorized"`
}

// MessageResponseDTO는 단순 메시지 응답 형식을 통일하기 위한 DTO이다.
type MessageResponseDTO struct {
	Message string `json:"message" example:"Logout successful"`
}

type HealthResponseDTO struct {
	Status  string `json:"status" example:"ok"`
	Message string `json:"message" example:"Server is running"`
}

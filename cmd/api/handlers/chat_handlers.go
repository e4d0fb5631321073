package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-chat/cmd/api/dto"
	"gemini-chat/cmd/api/services"
	"gemini-chat/provider"
)

// ChatHandler godoc
// @Summary      채팅 메시지 전송
// @Description  conversationId 가 없으면 새 대화를 만들고, 있으면 이어서 대화한다. user 메시지는 provider 결과와 상관없이 저장된다.
// @Tags         chat
// @Security     SessionCookie
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ChatRequestDTO  true  "chat request"
// @Success      200   {object}  dto.ChatResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      401   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Failure      429   {object}  dto.RateLimitedResponseDTO
// @Failure      500   {object}  dto.ChatErrorResponseDTO
// @Router       /api/chat [post]
func ChatHandler(turnSvc *services.TurnService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		var req dto.ChatRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_request"})
			return
		}

		history := make([]provider.Turn, 0, len(req.History))
		for _, h := range req.History {
			history = append(history, provider.Turn{Role: h.Role, Content: h.Content})
		}

		result, chatErr := turnSvc.HandleTurn(c.Request.Context(), services.TurnRequest{
			UserID:         userID,
			ConversationID: req.ConversationID.Ptr(),
			Message:        req.Message,
			History:        history,
		})
		if chatErr != nil {
			writeChatError(c, chatErr)
			return
		}

		c.JSON(http.StatusOK, dto.ChatResponseDTO{
			Response:       result.Response,
			ConversationID: result.ConversationID,
		})
	}
}

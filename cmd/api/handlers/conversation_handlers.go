package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gemini-chat/cmd/api/dto"
	"gemini-chat/cmd/api/services"
)

// ListConversationsHandler godoc
// @Summary      대화 목록
// @Description  로그인한 사용자의 대화를 최신순으로 돌려준다.
// @Tags         conversations
// @Security     SessionCookie
// @Produce      json
// @Success      200  {array}   dto.ConversationDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /api/conversations [get]
func ListConversationsHandler(svc *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		conversations, chatErr := svc.List(c.Request.Context(), userID)
		if chatErr != nil {
			writeChatError(c, chatErr)
			return
		}
		c.JSON(http.StatusOK, dto.ToConversationDTOs(conversations))
	}
}

// GetConversationMessagesHandler godoc
// @Summary      대화 메시지 조회
// @Description  대화의 메시지를 오래된 순으로 돌려준다. 다른 사용자의 대화는 404.
// @Tags         conversations
// @Security     SessionCookie
// @Produce      json
// @Param        id   path      int  true  "conversation id"
// @Success      200  {array}   dto.MessageDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /api/conversations/{id} [get]
func GetConversationMessagesHandler(svc *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_conversation_id"})
			return
		}

		messages, chatErr := svc.Messages(c.Request.Context(), userID, id)
		if chatErr != nil {
			writeChatError(c, chatErr)
			return
		}
		c.JSON(http.StatusOK, dto.ToMessageDTOs(messages))
	}
}

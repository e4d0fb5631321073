package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-chat/cmd/api/auth"
	"gemini-chat/cmd/api/dto"
	"gemini-chat/cmd/api/services"
	"gemini-chat/cmd/api/trace"
	"gemini-chat/internal/logger"
)

// RegisterHandler godoc
// @Summary      회원가입
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CredentialsRequestDTO  true  "credentials"
// @Success      200   {object}  dto.RegisterResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      409   {object}  dto.ErrorResponseDTO  "이미 사용 중인 username"
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /api/register [post]
func RegisterHandler(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CredentialsRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_request"})
			return
		}

		user, chatErr := authSvc.Register(c.Request.Context(), req.Username, req.Password)
		if chatErr != nil {
			writeChatError(c, chatErr)
			return
		}

		fields := logger.Fields(trace.Fields(c.Request.Context()))
		fields["user_id"] = user.ID
		logger.InfoWithFields("user registered", fields)

		c.JSON(http.StatusOK, dto.RegisterResponseDTO{Message: "User registered successfully", UserID: user.ID})
	}
}

// LoginHandler godoc
// @Summary      로그인
// @Description  자격 증명을 확인하고 세션 쿠키를 발급한다.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CredentialsRequestDTO  true  "credentials"
// @Success      200   {object}  dto.MessageResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      401   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /api/login [post]
func LoginHandler(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CredentialsRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_request"})
			return
		}

		token, chatErr := authSvc.Login(c.Request.Context(), req.Username, req.Password)
		if chatErr != nil {
			writeChatError(c, chatErr)
			return
		}

		auth.SetSessionCookie(c, authSvc.CookieName(), token, int(authSvc.SessionTTL().Seconds()), authSvc.CookieSecure())
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "Login successful"})
	}
}

// LogoutHandler godoc
// @Summary      로그아웃
// @Description  세션 토큰을 서버에서 폐기하고 쿠키를 만료시킨다. 로그인하지 않은 상태에서도 200.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.MessageResponseDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /api/logout [post]
func LogoutHandler(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := auth.ExtractSessionToken(c, authSvc.CookieName())
		chatErr := authSvc.Logout(c.Request.Context(), token)
		auth.ClearSessionCookie(c, authSvc.CookieName(), authSvc.CookieSecure())
		if chatErr != nil {
			writeChatError(c, chatErr)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "Logout successful"})
	}
}

// LoginStatusHandler godoc
// @Summary      로그인 상태 조회
// @Description  세션 쿠키가 유효한지 여부만 돌려준다. 401 을 내려주지 않는다.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.LoginStatusDTO
// @Router       /api/user [get]
func LoginStatusHandler(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractSessionToken(c, authSvc.CookieName())
		if err != nil {
			c.JSON(http.StatusOK, dto.LoginStatusDTO{LoggedIn: false})
			return
		}
		_, err = authSvc.ParseSession(c.Request.Context(), token)
		c.JSON(http.StatusOK, dto.LoginStatusDTO{LoggedIn: err == nil})
	}
}

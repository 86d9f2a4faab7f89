package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/assistant"
)

type chatbotApi struct {
	bot assistant.ServiceInterface
}

func registerChatbotAPI(g *echo.Group, jwt, active echo.MiddlewareFunc, bot assistant.ServiceInterface) {
	api := chatbotApi{bot: bot}

	g.POST("/chatbot", api.chat, jwt, active)
}

type (
	chatMessage struct {
		Message string `json:"message"`
	}

	chatReply struct {
		Reply string `json:"reply"`
	}
)

// Handlers

func (api *chatbotApi) chat(ctx echo.Context) error {
	var data chatMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to chatMessage")
	}

	reply, err := api.bot.Chat(ctx.Request().Context(), data.Message)
	if err != nil {
		return errors.Wrap(err, "chatting with assistant")
	}
	return ctx.JSON(http.StatusOK, chatReply{Reply: reply})
}

package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fmpberger88/EnigmaTalk/dto"
	"github.com/fmpberger88/EnigmaTalk/dto/req"
	"github.com/fmpberger88/EnigmaTalk/dto/res"
	"github.com/fmpberger88/EnigmaTalk/usecase"
)

type ChatHandler struct {
	usecase.ChatUsecase
	Scheduler *usecase.DeletionScheduler
	Hub       *WebSocketHandler
	*logrus.Logger
}

func NewChatHandler(chatUsecase usecase.ChatUsecase, scheduler *usecase.DeletionScheduler, hub *WebSocketHandler, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		ChatUsecase: chatUsecase,
		Scheduler:   scheduler,
		Hub:         hub,
		Logger:      logger,
	}
}

func (handler *ChatHandler) CreateChat(c *fiber.Ctx) error {
	requesterID := c.Locals("user_id").(string)

	payload := new(req.CreateChatRequest)
	if err := c.BodyParser(payload); err != nil {
		return fiber.ErrBadRequest
	}

	chatResponse, err := handler.ChatUsecase.CreateOrGetChat(c.Context(), requesterID, payload.Usernames)
	if err != nil {
		handler.Logger.WithError(err).Error("Failed to create chat")
		return err
	}

	response := res.CommonResponse[res.ChatResponse]{
		Message:    "Successfully to Create Chat",
		StatusCode: fiber.StatusCreated,
		Data:       chatResponse,
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

func (handler *ChatHandler) GetAllChats(c *fiber.Ctx) error {
	requesterID := c.Locals("user_id").(string)

	chatResponses, err := handler.ChatUsecase.ListChats(c.Context(), requesterID)
	if err != nil {
		handler.Logger.WithError(err).Error("Failed to get all chats")
		return err
	}

	responses := res.CommonResponse[[]res.ChatResponse]{
		Message:    "Successfully to Get All Chats",
		StatusCode: fiber.StatusOK,
		Data:       chatResponses,
	}
	return c.Status(fiber.StatusOK).JSON(responses)
}

func (handler *ChatHandler) SendMessage(c *fiber.Ctx) error {
	requesterID := c.Locals("user_id").(string)
	chatID := c.Params("chatId")

	payload := new(req.SendMessageRequest)
	if err := c.BodyParser(payload); err != nil {
		return fiber.ErrBadRequest
	}

	messageResponse, err := handler.ChatUsecase.SendMessage(c.Context(), chatID, requesterID, payload.Content)
	if err != nil {
		handler.Logger.WithError(err).Error("Failed to send message")
		return err
	}

	// fan out to every live connection in the room
	handler.Hub.Publish(dto.BroadcastMessage{
		Type:           "message",
		MessageID:      messageResponse.MessageId,
		ChatID:         messageResponse.ChatId,
		SenderID:       messageResponse.SenderId,
		SenderUsername: messageResponse.SenderUsername,
		Content:        messageResponse.Content,
		CreatedAt:      messageResponse.CreatedAt,
	})

	response := res.CommonResponse[res.MessageResponse]{
		Message:    "Successfully to Send Message",
		StatusCode: fiber.StatusCreated,
		Data:       messageResponse,
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

func (handler *ChatHandler) GetMessagesByID(c *fiber.Ctx) error {
	requesterID := c.Locals("user_id").(string)
	chatID := c.Params("chatId")

	if chatID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "chatId is required",
		})
	}

	messages, err := handler.ChatUsecase.ListMessages(c.Context(), chatID, requesterID)
	if err != nil {
		handler.Logger.WithError(err).Error("Failed to get messages by chat ID")
		return err
	}

	return c.JSON(fiber.Map{
		"chatId":   chatID,
		"messages": messages,
	})
}

// MarkMessageRead acknowledges a read and arms the disappearing-message
// timer; the message is hard-deleted once it fires.
func (handler *ChatHandler) MarkMessageRead(c *fiber.Ctx) error {
	requesterID := c.Locals("user_id").(string)
	messageID := c.Params("messageId")

	if err := handler.Scheduler.ScheduleDeletion(c.Context(), messageID, requesterID); err != nil {
		handler.Logger.WithError(err).Error("Failed to schedule message deletion")
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("Message will be deleted after %s", handler.Scheduler.Delay),
	})
}

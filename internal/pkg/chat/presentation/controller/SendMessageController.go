package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/infrastructure/httperr"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/usecase"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/presentation/dto"
)

// multipart overhead allowed on top of the image limit
const formOverhead = 64 << 10

// SendMessageController handles the send-message endpoint only (one controller per endpoint)
type SendMessageController struct {
	UC            *usecase.SendMessageUseCase
	MaxImageBytes int64
	Timeout       time.Duration
	Log           zerolog.Logger
}

func NewSendMessageController(uc *usecase.SendMessageUseCase, maxImageBytes int64, timeout time.Duration, log zerolog.Logger) *SendMessageController {
	return &SendMessageController{UC: uc, MaxImageBytes: maxImageBytes, Timeout: timeout, Log: log}
}

// Handle accepts multipart/form-data (or urlencoded) with chatId, text and
// an optional image file.
func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := caller(c)
		if !ok {
			return
		}
		if h.MaxImageBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxImageBytes+formOverhead)
		}
		if err := h.parseForm(c); err != nil {
			httperr.BadRequest(c, err.Error())
			return
		}

		chatID := strings.TrimSpace(c.PostForm("chatId"))
		if chatID == "" {
			httperr.BadRequest(c, "chatId is required")
			return
		}
		in := usecase.SendMessageInput{
			ConversationID: chatID,
			Sender:         me,
			Text:           c.PostForm("text"),
		}

		img, err := h.readImage(c)
		if err != nil {
			httperr.BadRequest(c, err.Error())
			return
		}
		in.Image = img

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()
		msg, err := h.UC.Execute(ctx, in)
		if err != nil {
			respondError(c, h.Log, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": dto.FromMessage(*msg),
			"sender":  me.ID,
		})
	}
}

// parseForm reads the whole body up front so a size overrun is reported as
// such instead of surfacing later as missing fields.
func (h *SendMessageController) parseForm(c *gin.Context) error {
	err := c.Request.ParseMultipartForm(h.multipartMemory())
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errors.New("image is too large")
	}
	return errors.New("invalid form body")
}

func (h *SendMessageController) multipartMemory() int64 {
	if h.MaxImageBytes > 0 {
		return h.MaxImageBytes + formOverhead
	}
	return 32 << 20
}

func (h *SendMessageController) readImage(c *gin.Context) (*usecase.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.New("image is too large")
		}
		return nil, errors.New("invalid multipart form")
	}
	if h.MaxImageBytes > 0 && fh.Size > h.MaxImageBytes {
		return nil, errors.New("image is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("unreadable image")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.New("unreadable image")
	}
	return &usecase.ImageUpload{Data: data, Filename: fh.Filename}, nil
}

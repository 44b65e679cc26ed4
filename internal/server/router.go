package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/atikwanduka/watrack/internal/clicks"
	"github.com/atikwanduka/watrack/internal/messages"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// defaultClickText is stored and forwarded when the visitor supplied no text.
	defaultClickText = "Hello"

	waDeepLinkBase = "https://wa.me/"

	hubModeSubscribe = "subscribe"
)

var (
	errMissingClickService   = errors.New("click service dependency required")
	errMissingMessageService = errors.New("message service dependency required")
	errMissingVerifyToken    = errors.New("webhook verify token required")
)

// ClickService is the write/read surface of the clicks table the router needs.
type ClickService interface {
	Record(ctx context.Context, ip, text, referrer string) error
	ListRecent(ctx context.Context, limit int) ([]clicks.ClickEvent, error)
}

// MessageService is the write/read surface of the messages table the router needs.
type MessageService interface {
	StoreIfAbsent(ctx context.Context, fromPhone, text, messageID string) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]messages.InboundMessage, error)
}

// Dependencies wires the router to its services and startup configuration.
// WhatsAppPhone may be empty; the redirect endpoint then answers 500 per
// request while the rest of the surface keeps working.
type Dependencies struct {
	Clicks        ClickService
	Messages      MessageService
	WhatsAppPhone string
	VerifyToken   string
	Logger        *zap.Logger
}

// NewHTTPHandler builds the gin router for the ingestion service.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Clicks == nil {
		return nil, errMissingClickService
	}
	if deps.Messages == nil {
		return nil, errMissingMessageService
	}
	if strings.TrimSpace(deps.VerifyToken) == "" {
		return nil, errMissingVerifyToken
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		clicks:      deps.Clicks,
		messages:    deps.Messages,
		phone:       deps.WhatsAppPhone,
		verifyToken: deps.VerifyToken,
		logger:      logger,
	}

	router.GET("/api/whatsapp", handler.handleWhatsAppRedirect)
	router.GET("/api/clicks", handler.handleListClicks)
	router.GET("/api/messages", handler.handleListMessages)
	router.GET("/api/whatsapp-webhook", handler.handleWebhookVerify)
	router.POST("/api/whatsapp-webhook", handler.handleWebhookReceive)
	router.GET("/api/health", handler.handleHealth)

	return router, nil
}

type httpHandler struct {
	clicks      ClickService
	messages    MessageService
	phone       string
	verifyToken string
	logger      *zap.Logger
}

// handleWhatsAppRedirect logs a click and bounces the visitor to the wa.me
// deep link. A store failure is logged and swallowed: tracking must never
// block the user-facing redirect.
func (h *httpHandler) handleWhatsAppRedirect(c *gin.Context) {
	if h.phone == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "not_configured"})
		return
	}

	text := c.Query("text")
	if text == "" {
		text = defaultClickText
	}
	referrer := c.GetHeader("Referer")
	ip := clientAddress(c)

	if err := h.clicks.Record(c.Request.Context(), ip, text, referrer); err != nil {
		h.logger.Error("click insert failed", zap.Error(err))
	}

	target := waDeepLinkBase + h.phone + "?text=" + encodeQueryComponent(text)
	c.Redirect(http.StatusFound, target)
}

// clientAddress prefers the forwarding header, falls back to the transport
// peer address, and returns empty when neither is determinable.
func clientAddress(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	remote := c.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}

// encodeQueryComponent percent-encodes a query value, with spaces as %20 so
// the wa.me link renders the prefilled text correctly.
func encodeQueryComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

func (h *httpHandler) handleListClicks(c *gin.Context) {
	rows, err := h.clicks.ListRecent(c.Request.Context(), parseLimit(c.Query("limit")))
	if err != nil {
		h.logger.Error("failed to list clicks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *httpHandler) handleListMessages(c *gin.Context) {
	rows, err := h.messages.ListRecent(c.Request.Context(), parseLimit(c.Query("limit")))
	if err != nil {
		h.logger.Error("failed to list messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// parseLimit reads the limit parameter defensively; anything non-numeric or
// non-positive falls through to the service default.
func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

// handleWebhookVerify answers the platform's one-time ownership handshake:
// the challenge is echoed verbatim, never JSON-wrapped.
func (h *httpHandler) handleWebhookVerify(c *gin.Context) {
	mode := c.Query("hub.mode")
	challenge := c.Query("hub.challenge")
	token := c.Query("hub.verify_token")

	if mode == hubModeSubscribe && token == h.verifyToken {
		h.logger.Info("webhook verified")
		c.String(http.StatusOK, "%s", challenge)
		return
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
}

// handleWebhookReceive acknowledges the delivery unconditionally before any
// parsing or persistence: the platform retries unacknowledged deliveries,
// and a retry storm is worse than a missed message. Processing happens in a
// goroutine with no remaining channel back to the caller.
func (h *httpHandler) handleWebhookReceive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Warn("failed to read webhook body", zap.Error(err))
		body = nil
	}

	c.JSON(http.StatusOK, gin.H{"received": true})

	go h.processWebhook(body)
}

// processWebhook runs after the acknowledgment is sent. Every failure mode
// here is logged and discarded; the request context is gone, so it uses the
// background context for the store write.
func (h *httpHandler) processWebhook(body []byte) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("webhook processing panic", zap.Any("panic", r))
		}
	}()

	var payload messages.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Debug("webhook payload not parseable", zap.Error(err))
		return
	}

	message, ok := messages.ExtractMessage(payload)
	if !ok {
		// Status updates and other non-message deliveries land here.
		return
	}

	text := messages.NormalizeText(message)
	if text == "" {
		return
	}

	if _, err := h.messages.StoreIfAbsent(context.Background(), message.From, text, message.ID); err != nil {
		h.logger.Error("message insert failed",
			zap.String("message_id", message.ID),
			zap.Error(err),
		)
	}
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

package handler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/muralianand12345/AI-API/internal/app"
	"github.com/muralianand12345/AI-API/internal/docstore"
	"github.com/muralianand12345/AI-API/internal/transport/http/middleware"
	"github.com/muralianand12345/AI-API/internal/transport/http/response"
)

const maxPDFSize = 10 << 20 // 10 MB

type AIHandler struct {
	documentService *app.DocumentService
	chatService     *app.ChatService
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

func NewAIHandler(documentService *app.DocumentService, chatService *app.ChatService) *AIHandler {
	return &AIHandler{
		documentService: documentService,
		chatService:     chatService,
	}
}

// UploadPDF accepts a multipart form with "file", stores and indexes it for
// the authenticated user.
func (h *AIHandler) UploadPDF(c *gin.Context) {
	username, ok := getUsernameFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxPDFSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MB)")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	result, err := h.documentService.Upload(c.Request.Context(), username, raw, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotPDF), errors.Is(err, app.ErrInvalidInput),
			errors.Is(err, docstore.ErrEmptyDocument):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			log.Printf("upload failed for %s: %v", username, err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "Error processing PDF")
		}
		return
	}

	response.OK(c, gin.H{
		"message":          "PDF processed successfully",
		"filename":         result.Filename,
		"chunks_processed": result.ChunksProcessed,
	})
}

// DocumentStats reports the size of the user's index.
func (h *AIHandler) DocumentStats(c *gin.Context) {
	username, ok := getUsernameFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	stats, err := h.documentService.Stats(username)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "document stats failed")
		return
	}

	response.OK(c, gin.H{
		"total_documents": stats.TotalDocuments,
		"has_embeddings":  stats.HasEmbeddings,
	})
}

// ListDocuments returns the user's upload records.
func (h *AIHandler) ListDocuments(c *gin.Context) {
	username, ok := getUsernameFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	uploads, err := h.documentService.ListUploads(username)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}

	response.OK(c, uploads)
}

// Chat answers a message with document context and conversational memory.
func (h *AIHandler) Chat(c *gin.Context) {
	username, ok := getUsernameFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	reply, err := h.chatService.Chat(c.Request.Context(), username, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			// the cause stays in the log; clients get a stable generic message
			log.Printf("chat failed for %s: %v", username, err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer,
				"Error occurred while chatting with AI, try again.")
		}
		return
	}

	response.OK(c, gin.H{
		"username": username,
		"message":  req.Message,
		"response": reply,
	})
}

// History returns the archived transcript for the user.
func (h *AIHandler) History(c *gin.Context) {
	username, ok := getUsernameFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	history, err := h.chatService.History(c.Request.Context(), username, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		return
	}

	response.OK(c, history)
}

// ClearHistory removes the user's conversational state.
func (h *AIHandler) ClearHistory(c *gin.Context) {
	username, ok := getUsernameFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	if err := h.chatService.ClearHistory(c.Request.Context(), username); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "clear history failed")
		return
	}

	response.OK(c, gin.H{"message": "Conversation history cleared"})
}

func getUsernameFromContext(c *gin.Context) (string, bool) {
	usernameAny, exists := c.Get(middleware.ContextUsernameKey)
	if !exists {
		return "", false
	}
	username, ok := usernameAny.(string)
	if !ok || username == "" {
		return "", false
	}
	return username, true
}

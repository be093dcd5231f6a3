package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github/itish2003/pdfchat/models"
	"github/itish2003/pdfchat/services"
)

// SessionController exposes PDF chat sessions over HTTP. Business logic lives
// in the SessionOrchestrator; the controller only binds requests and maps
// errors to status codes.
type SessionController struct {
	store          *services.SessionStore
	orchestrator   *services.SessionOrchestrator
	maxUploadBytes int64
}

func NewSessionController(store *services.SessionStore, orchestrator *services.SessionOrchestrator, maxUploadBytes int64) *SessionController {
	return &SessionController{
		store:          store,
		orchestrator:   orchestrator,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes mounts the session endpoints on the given group.
func (c *SessionController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/sessions", c.CreateSession)
	group.GET("/sessions/:id", c.GetSession)
	group.DELETE("/sessions/:id", c.DeleteSession)
	group.POST("/sessions/:id/documents", c.LoadDocuments)
	group.POST("/sessions/:id/query", c.Query)
	group.GET("/sessions/:id/messages", c.GetMessages)
}

func (c *SessionController) session(ctx *gin.Context) (*services.Session, bool) {
	s, ok := c.store.Get(ctx.Param("id"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	}
	return s, ok
}

func (c *SessionController) CreateSession(ctx *gin.Context) {
	id, _ := c.store.Create()
	ctx.JSON(http.StatusCreated, models.CreateSessionResponse{SessionID: id})
}

func (c *SessionController) GetSession(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	status := s.Status()
	status.SessionID = ctx.Param("id")
	ctx.JSON(http.StatusOK, status)
}

func (c *SessionController) DeleteSession(ctx *gin.Context) {
	if !c.store.Delete(ctx.Param("id")) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// LoadDocuments handles a multipart upload of "files" plus backend fields
// (backend, model, api_key, base_url).
func (c *SessionController) LoadDocuments(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	if c.maxUploadBytes > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadBytes)
	}

	var params models.BackendParams
	if err := ctx.ShouldBind(&params); err != nil {
		ctx.JSON(uploadStatus(err), gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	docs, err := readUploads(ctx)
	if err != nil {
		ctx.JSON(uploadStatus(err), gin.H{"error": "Invalid upload: " + err.Error()})
		return
	}

	corpus, err := c.orchestrator.LoadDocuments(ctx.Request.Context(), s, docs, params)
	if err != nil {
		ctx.JSON(statusFor(err), models.LoadDocumentsResponse{
			SessionID: ctx.Param("id"),
			Error:     err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, models.LoadDocumentsResponse{
		Message:    fmt.Sprintf("Loaded %d PDF(s) with %d characters.", len(docs), len(corpus.Text)),
		SessionID:  ctx.Param("id"),
		Documents:  corpus.Documents,
		Characters: len(corpus.Text),
		Failed:     corpus.Failed,
	})
}

func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func readUploads(ctx *gin.Context) ([]models.RawDocument, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, err
	}
	files := form.File["files"]
	docs := make([]models.RawDocument, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		docs = append(docs, models.RawDocument{Name: fh.Filename, Bytes: data})
	}
	return docs, nil
}

func (c *SessionController) Query(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}

	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	reply, err := c.orchestrator.Ask(ctx.Request.Context(), s, req.Question)
	if err != nil {
		ctx.JSON(statusFor(err), models.QueryResponse{SessionID: ctx.Param("id"), Error: err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, models.QueryResponse{
		Answer:     reply.Content,
		HistoryLen: len(s.History()),
		SessionID:  ctx.Param("id"),
	})
}

func (c *SessionController) GetMessages(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	history := s.History()
	ctx.JSON(http.StatusOK, models.MessagesResponse{
		SessionID: ctx.Param("id"),
		Count:     len(history),
		Messages:  history,
	})
}

func statusFor(err error) int {
	var cfgErr *services.ConfigurationError
	var initErr *services.InitializationError
	switch {
	case errors.Is(err, services.ErrNoDocuments), errors.Is(err, services.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotReady), errors.Is(err, services.ErrBusy):
		return http.StatusConflict
	case errors.As(err, &cfgErr), errors.As(err, &initErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classroom-notes-go/db"
	"classroom-notes-go/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// APIHandler holds the dependencies for API handlers, like the notes repository
type APIHandler struct {
	Notes  db.NotesRepository
	logger *zap.Logger
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(notes db.NotesRepository, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		Notes:  notes,
		logger: logger,
	}
}

type saveNotesRequest struct {
	Content *string `json:"content" binding:"required"`
}

// storeFailure logs a repository error and answers with its message.
func (h *APIHandler) storeFailure(c *gin.Context, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err), zap.String("request_id", requestID(c)))
	h.logger.Error(msg, fields...)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// --- Notes Handlers ---

// GetNotes handles GET /api/notes/:classroomId
func (h *APIHandler) GetNotes(c *gin.Context) {
	classroomID := c.Param("classroomId")

	record, err := h.Notes.GetNotes(c.Request.Context(), classroomID)
	if err != nil {
		h.storeFailure(c, "Error fetching notes", err, zap.String("classroom_id", classroomID))
		return
	}
	c.JSON(http.StatusOK, record)
}

// SaveNotes handles POST /api/notes/:classroomId
func (h *APIHandler) SaveNotes(c *gin.Context) {
	classroomID := c.Param("classroomId")

	var req saveNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if err := h.Notes.PutNotes(c.Request.Context(), classroomID, *req.Content); err != nil {
		h.storeFailure(c, "Error saving notes", err, zap.String("classroom_id", classroomID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// --- Class Handlers ---

// GetAllClasses handles GET /api/classes
func (h *APIHandler) GetAllClasses(c *gin.Context) {
	classes, err := h.Notes.ListClasses(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "Error fetching classes", err)
		return
	}
	if classes == nil {
		// Return empty list instead of null for JSON consistency
		c.JSON(http.StatusOK, []models.NoteRecord{})
		return
	}
	c.JSON(http.StatusOK, classes)
}

// ExportClasses handles GET /api/classes/export
func (h *APIHandler) ExportClasses(c *gin.Context) {
	classes, err := h.Notes.ListClasses(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "Error fetching classes for export", err)
		return
	}

	var buf bytes.Buffer
	if err := db.WriteClassesWorkbook(&buf, classes); err != nil {
		h.logger.Error("Error building workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="classes.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// --- Import Handler ---

// ImportNotes handles POST /api/import/notes
func (h *APIHandler) ImportNotes(c *gin.Context) {
	file, header, err := c.Request.FormFile("file") // "file" is the name attribute in the form
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error retrieving uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	h.logger.Info("Received notes upload", zap.String("filename", header.Filename))

	importedCount, err := db.ImportNotesFromExcel(c.Request.Context(), h.Notes, file, h.logger)
	if err != nil {
		h.logger.Error("Error importing notes",
			zap.String("filename", header.Filename),
			zap.Int("imported", importedCount),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":         "Failed to import notes: " + err.Error(),
			"importedCount": importedCount,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Import successful",
		"importedCount": importedCount,
	})
}

// --- Ping Handler ---
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}

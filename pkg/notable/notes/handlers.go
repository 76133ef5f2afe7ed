package notes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tomblanch/notable/pkg/notable/auth"
	"github.com/tomblanch/notable/pkg/notable/models"
	"github.com/tomblanch/notable/pkg/notable/validation"
	"gorm.io/gorm"
)

// Handler handles note-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new notes handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateNoteRequest represents the request to create a note.
// Any client-supplied created_by is ignored; ownership comes from the token.
type CreateNoteRequest struct {
	Title   string     `json:"title" binding:"required,max=150"`
	Body    string     `json:"body" binding:"required,max=500"`
	Private *bool      `json:"private"`
	Tags    []TagInput `json:"tags" binding:"omitempty,dive"`
}

// UpdateNoteRequest represents the request to update a note. A full payload
// is required: title, body and tags are replaced; private is left untouched.
type UpdateNoteRequest struct {
	Title string     `json:"title" binding:"required,max=150"`
	Body  string     `json:"body" binding:"required,max=500"`
	Tags  []TagInput `json:"tags" binding:"omitempty,dive"`
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	Title string `json:"title"`
}

// NoteResponse represents a note in API responses
type NoteResponse struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	Body      string        `json:"body"`
	Private   bool          `json:"private"`
	Tags      []TagResponse `json:"tags"`
	CreatedBy uint          `json:"created_by"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

func noteToResponse(note models.Note) NoteResponse {
	tags := make([]TagResponse, len(note.Tags))
	for i, t := range note.Tags {
		tags[i] = TagResponse{Title: t.Title}
	}
	return NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Body:      note.Body,
		Private:   note.Private,
		Tags:      tags,
		CreatedBy: note.CreatedByID,
		CreatedAt: note.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: note.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func notesToResponse(notes []models.Note) []NoteResponse {
	responses := make([]NoteResponse, len(notes))
	for i, note := range notes {
		responses[i] = noteToResponse(note)
	}
	return responses
}

// bindNoteID parses the :id path parameter. An unparseable id behaves like a
// missing row so the response is indistinguishable from a real miss.
func bindNoteID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		return 0, false
	}
	return uint(id), true
}

// List returns all notes owned by the caller
// @Summary List own notes
// @Description Get all notes created by the authenticated user
// @Tags notes
// @Produce json
// @Success 200 {array} NoteResponse
// @Security BearerAuth
// @Router /notes [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var notes []models.Note
	err := h.db.Preload("Tags").
		Where("created_by_id = ?", userID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notes"})
		return
	}

	c.JSON(http.StatusOK, notesToResponse(notes))
}

// Create creates a new note owned by the caller
// @Summary Create a note
// @Description Create a new note; tags are resolved to existing tags by exact title or created
// @Tags notes
// @Accept json
// @Produce json
// @Param request body CreateNoteRequest true "Note details"
// @Success 201 {object} NoteResponse
// @Failure 400 {object} map[string]validation.Errors "Validation error"
// @Security BearerAuth
// @Router /notes [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errs, ok := validation.Map(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	tags, err := reconcileTags(h.db, req.Tags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve tags"})
		return
	}

	private := true
	if req.Private != nil {
		private = *req.Private
	}

	note := models.Note{
		Title:       req.Title,
		Body:        req.Body,
		Private:     private,
		CreatedByID: userID,
	}

	if err := h.db.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create note"})
		return
	}

	if err := h.db.Model(&note).Association("Tags").Replace(tags); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach tags"})
		return
	}
	note.Tags = tags

	c.JSON(http.StatusCreated, noteToResponse(note))
}

// Get returns a single note if it is visible to the caller. A private note
// owned by someone else answers 404, not 403, so its existence is not leaked.
// @Summary Get a note
// @Description Get a note by id if public or owned by the caller
// @Tags notes
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} NoteResponse
// @Failure 404 {object} map[string]string "Note not found"
// @Security BearerAuth
// @Router /notes/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	id, ok := bindNoteID(c)
	if !ok {
		return
	}

	var note models.Note
	err := h.db.Preload("Tags").
		Where("id = ?", id).
		Where("private = ? OR created_by_id = ?", false, userID).
		First(&note).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		return
	}

	c.JSON(http.StatusOK, noteToResponse(note))
}

// Update replaces a note's title, body and tag set. Only the owner may
// update; a non-owner gets 404 even for a public note. The private flag and
// owner are never changed here.
// @Summary Update a note
// @Description Replace title, body and tags of an owned note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path int true "Note ID"
// @Param request body UpdateNoteRequest true "Updated note details"
// @Success 200 {object} NoteResponse
// @Failure 400 {object} map[string]validation.Errors "Validation error"
// @Failure 404 {object} map[string]string "Note not found"
// @Security BearerAuth
// @Router /notes/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	id, ok := bindNoteID(c)
	if !ok {
		return
	}

	var note models.Note
	err := h.db.Where("id = ? AND created_by_id = ?", id, userID).First(&note).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errs, ok := validation.Map(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	tags, err := reconcileTags(h.db, req.Tags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve tags"})
		return
	}

	note.Title = req.Title
	note.Body = req.Body

	if err := h.db.Save(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update note"})
		return
	}

	if err := h.db.Model(&note).Association("Tags").Replace(tags); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tags"})
		return
	}
	note.Tags = tags

	c.JSON(http.StatusOK, noteToResponse(note))
}

// Delete deletes an owned note. Tags stay behind even when orphaned.
// @Summary Delete a note
// @Description Delete an owned note
// @Tags notes
// @Param id path int true "Note ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Note not found"
// @Security BearerAuth
// @Router /notes/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	id, ok := bindNoteID(c)
	if !ok {
		return
	}

	var note models.Note
	err := h.db.Where("id = ? AND created_by_id = ?", id, userID).First(&note).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		return
	}

	if err := h.db.Delete(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete note"})
		return
	}

	c.Status(http.StatusNoContent)
}

// TagFilter returns visible notes carrying a tag whose title matches the key
// case-insensitively
// @Summary Filter notes by tag
// @Description List visible notes tagged with the given title (case-insensitive match)
// @Tags notes
// @Produce json
// @Param key path string true "Tag title"
// @Success 200 {array} NoteResponse
// @Security BearerAuth
// @Router /notes/tags/{key} [get]
func (h *Handler) TagFilter(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	key := c.Param("key")

	var notes []models.Note
	err := h.db.Preload("Tags").
		Joins("JOIN note_tags ON note_tags.note_id = notes.id").
		Joins("JOIN tags ON tags.id = note_tags.tag_id").
		Where("LOWER(tags.title) = LOWER(?)", key).
		Where("notes.private = ? OR notes.created_by_id = ?", false, userID).
		Distinct("notes.*").
		Find(&notes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notes"})
		return
	}

	c.JSON(http.StatusOK, notesToResponse(notes))
}

// PublicList returns all public notes across all owners, no auth required
// @Summary List public notes
// @Description Get all notes with private=false, any caller
// @Tags notes
// @Produce json
// @Success 200 {array} NoteResponse
// @Router /notes/public [get]
func (h *Handler) PublicList(c *gin.Context) {
	var notes []models.Note
	err := h.db.Preload("Tags").
		Where("private = ?", false).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notes"})
		return
	}

	c.JSON(http.StatusOK, notesToResponse(notes))
}

// RegisterRoutes registers the authenticated note routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notes", h.List)
	rg.POST("/notes", h.Create)
	rg.GET("/notes/tags/:key", h.TagFilter)
	rg.GET("/notes/:id", h.Get)
	rg.PUT("/notes/:id", h.Update)
	rg.DELETE("/notes/:id", h.Delete)
}

// RegisterPublicRoutes registers the unauthenticated note routes
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/notes/public", h.PublicList)
}

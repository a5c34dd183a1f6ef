package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/focusdesk/ai"
	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/services"
	"github.com/cppla/focusdesk/utils"
)

// NoteController manages study notes and their generated summaries and quizzes.
type NoteController struct {
	db        *gorm.DB
	generator ai.Generator
	activity  *services.ActivityLogger
	now       func() time.Time
}

// NewNoteController creates a NoteController.
func NewNoteController(db *gorm.DB, generator ai.Generator, activity *services.ActivityLogger, now func() time.Time) *NoteController {
	if generator == nil {
		generator = ai.Unconfigured{}
	}
	if now == nil {
		now = time.Now
	}
	return &NoteController{db: db, generator: generator, activity: activity, now: now}
}

type noteRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Subject *string   `json:"subject"`
	Tags    *[]string `json:"tags"`
}

var noteSorts = map[string][]string{
	"createdAt_desc": {"created_at DESC", "id DESC"},
	"createdAt_asc":  {"created_at ASC", "id ASC"},
	"title_asc":      {"title ASC", "id ASC"},
	"title_desc":     {"title DESC", "id DESC"},
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// List returns notes filtered by ?q= (title or content substring, case-insensitive),
// ?subject= and ?tag=, sorted by ?sort=.
func (n *NoteController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	query := n.db.WithContext(ctx.Request.Context()).Where("user_id = ?", userID)
	if q := strings.TrimSpace(ctx.Query("q")); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(content) LIKE ? ESCAPE '!')`, pattern, pattern)
	}
	if subject := strings.TrimSpace(ctx.Query("subject")); subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if tag := strings.TrimSpace(ctx.Query("tag")); tag != "" {
		encoded, _ := json.Marshal(tag)
		query = query.Where(`tags LIKE ? ESCAPE '!'`, "%"+escapeLike(string(encoded))+"%")
	}

	order, ok := noteSorts[ctx.Query("sort")]
	if !ok {
		order = noteSorts["createdAt_desc"]
	}
	for _, clause := range order {
		query = query.Order(clause)
	}

	notes := []models.Note{}
	if err := query.Find(&notes).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to fetch notes", err))
		return
	}
	utils.Success(ctx, notes)
}

// Create stores a note. Title and content are required.
func (n *NoteController) Create(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req noteRequest
	if !bindJSON(ctx, &req) {
		return
	}
	var title, content string
	if req.Title != nil {
		title = utils.Sanitize(*req.Title)
	}
	if req.Content != nil {
		content = utils.SanitizeRich(*req.Content)
	}
	if title == "" || content == "" {
		utils.Fail(ctx, utils.Validation("Title and content are required"))
		return
	}

	note := models.Note{
		UserID:  userID,
		Title:   title,
		Content: content,
		Tags:    models.StringList{},
	}
	if req.Subject != nil {
		note.Subject = utils.Sanitize(*req.Subject)
	}
	if req.Tags != nil {
		note.Tags = models.StringList(utils.SanitizeList(*req.Tags))
	}

	if err := n.db.WithContext(ctx.Request.Context()).Create(&note).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to create note", err))
		return
	}
	utils.Created(ctx, note)
}

func (n *NoteController) Get(ctx *gin.Context) {
	note, ok := n.ownedFromPath(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, note)
}

// Update changes the provided fields. Title and content cannot be cleared.
func (n *NoteController) Update(ctx *gin.Context) {
	var req noteRequest
	note, ok := n.ownedFromPath(ctx)
	if !ok {
		return
	}
	if !bindJSON(ctx, &req) {
		return
	}

	if req.Title != nil {
		if title := utils.Sanitize(*req.Title); title != "" {
			note.Title = title
		}
	}
	if req.Content != nil {
		if content := utils.SanitizeRich(*req.Content); content != "" {
			note.Content = content
		}
	}
	if req.Subject != nil {
		note.Subject = utils.Sanitize(*req.Subject)
	}
	if req.Tags != nil {
		note.Tags = models.StringList(utils.SanitizeList(*req.Tags))
	}

	if err := n.db.WithContext(ctx.Request.Context()).Save(note).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to update note", err))
		return
	}
	utils.Success(ctx, note)
}

func (n *NoteController) Delete(ctx *gin.Context) {
	note, ok := n.ownedFromPath(ctx)
	if !ok {
		return
	}
	if err := n.db.WithContext(ctx.Request.Context()).Where("user_id = ?", note.UserID).Delete(&models.Note{}, note.ID).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to delete note", err))
		return
	}
	utils.Success(ctx, gin.H{"message": "Note deleted successfully"})
}

// Summary generates and stores a summary of the note content.
func (n *NoteController) Summary(ctx *gin.Context) {
	note, ok := n.ownedFromPath(ctx)
	if !ok {
		return
	}
	summary, err := n.generator.Summarize(ctx.Request.Context(), note.Content)
	if err != nil {
		utils.Fail(ctx, ai.AppError(err))
		return
	}

	generatedAt := n.now().UTC()
	err = n.db.WithContext(ctx.Request.Context()).Model(&models.Note{}).
		Where("id = ? AND user_id = ?", note.ID, note.UserID).
		Updates(map[string]interface{}{"summary": summary, "summary_generated_at": generatedAt}).Error
	if err != nil {
		utils.Fail(ctx, utils.Internal("failed to save summary", err))
		return
	}
	note.Summary = summary
	note.SummaryGeneratedAt = &generatedAt
	n.activity.Record(ctx.Request.Context(), note.UserID, models.ActivitySummaryGenerated, fmt.Sprintf("Generated summary: %s", note.Title))
	utils.Success(ctx, gin.H{"summary": summary, "summaryGeneratedAt": generatedAt, "note": note})
}

// Quiz generates and stores a multiple-choice quiz from the note content.
func (n *NoteController) Quiz(ctx *gin.Context) {
	note, ok := n.ownedFromPath(ctx)
	if !ok {
		return
	}
	questions, err := n.generator.Quiz(ctx.Request.Context(), note.Content)
	if err != nil {
		utils.Fail(ctx, ai.AppError(err))
		return
	}

	generatedAt := n.now().UTC()
	quiz := models.Quiz{Questions: questions, LastGeneratedAt: &generatedAt}
	err = n.db.WithContext(ctx.Request.Context()).Model(&models.Note{}).
		Where("id = ? AND user_id = ?", note.ID, note.UserID).
		Update("quiz", quiz).Error
	if err != nil {
		utils.Fail(ctx, utils.Internal("failed to save quiz", err))
		return
	}
	utils.Success(ctx, quiz)
}

func (n *NoteController) ownedFromPath(ctx *gin.Context) (*models.Note, bool) {
	userID, ok := requireUser(ctx)
	if !ok {
		return nil, false
	}
	id, ok := pathID(ctx, "Note")
	if !ok {
		return nil, false
	}
	var note models.Note
	err := n.db.WithContext(ctx.Request.Context()).Where("id = ? AND user_id = ?", id, userID).Take(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Fail(ctx, utils.NotFound("Note not found"))
		return nil, false
	}
	if err != nil {
		utils.Fail(ctx, utils.Internal("failed to load note", err))
		return nil, false
	}
	return &note, true
}

// Package httpapi exposes the REST surface consumed by the mobile client.
package httpapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stockpot"
	"stockpot/objstore"
	"stockpot/receipt"
)

type recommender interface {
	Recommend(ctx context.Context, req stockpot.RecommendationRequest) ([]stockpot.Recipe, error)
}

type videoGenerator interface {
	FromVideo(ctx context.Context, videoURL, platform string) (*stockpot.Recipe, error)
}

type receiptParser interface {
	ParseReceipt(ctx context.Context, image []byte, mimeType string) (receipt.Extraction, error)
	AnalyzeImage(ctx context.Context, image []byte, mimeType string) (receipt.Extraction, error)
}

type persistence interface {
	CreateProfile(ctx context.Context, p stockpot.Profile) error
	GetProfile(ctx context.Context, id string) (*stockpot.Profile, error)
	InsertItems(ctx context.Context, userUUID string, items []stockpot.Item) (int, error)
	ListItems(ctx context.Context, userUUID string) ([]stockpot.Item, error)
	SaveRecipe(ctx context.Context, userUUID string, r *stockpot.Recipe) error
	ListRecipes(ctx context.Context, userUUID string) ([]stockpot.Recipe, error)
}

// Handlers holds the services the HTTP layer delegates to.
type Handlers struct {
	engine      recommender
	video       videoGenerator
	receipts    receiptParser
	store       persistence
	archive     objstore.Archive
	bodyLimit   int64
	uploadLimit int64
}

func NewHandlers(engine recommender, video videoGenerator, receipts receiptParser, store persistence, archive objstore.Archive, cfg stockpot.ServerConfig) *Handlers {
	return &Handlers{
		engine:      engine,
		video:       video,
		receipts:    receipts,
		store:       store,
		archive:     archive,
		bodyLimit:   cfg.BodyLimit,
		uploadLimit: cfg.UploadLimit,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Recommend generates recipe recommendations from the user's inventory.
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[stockpot.RecommendationRequest](w, r, h.bodyLimit)
	if !ok {
		return
	}

	recipes, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "recommendations unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"recipes": recipes})
}

type videoRecipeRequest struct {
	VideoURL string `json:"videoUrl"`
	Platform string `json:"platform"`
	UserUUID string `json:"user_uuid"`
}

// RecipeFromVideo reconstructs a recipe from a cooking video and, when a
// user is given, saves it to their collection.
func (h *Handlers) RecipeFromVideo(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[videoRecipeRequest](w, r, h.bodyLimit)
	if !ok {
		return
	}
	if !requireField(w, req.VideoURL, "videoUrl") || !requireField(w, req.Platform, "platform") {
		return
	}

	recipe, err := h.video.FromVideo(r.Context(), req.VideoURL, req.Platform)
	if err != nil {
		writeDomainError(w, err, "recipe generation failed")
		return
	}

	if req.UserUUID != "" {
		if err := h.store.SaveRecipe(r.Context(), req.UserUUID, recipe); err != nil {
			writeDomainError(w, err, "recipe could not be saved")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "recipe": recipe})
}

// ParseReceipt extracts purchased items from an uploaded receipt image.
func (h *Handlers) ParseReceipt(w http.ResponseWriter, r *http.Request) {
	image, mimeType, ok := h.readImageUpload(w, r)
	if !ok {
		return
	}

	extraction, err := h.receipts.ParseReceipt(r.Context(), image, mimeType)
	if err != nil {
		writeDomainError(w, err, "receipt could not be parsed")
		return
	}

	h.archiveUpload(r.Context(), image, mimeType)

	writeJSON(w, http.StatusOK, map[string]any{"parsed": extraction})
}

// AnalyzeImage identifies grocery items in a photo of groceries.
func (h *Handlers) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	image, mimeType, ok := h.readImageUpload(w, r)
	if !ok {
		return
	}

	extraction, err := h.receipts.AnalyzeImage(r.Context(), image, mimeType)
	if err != nil {
		writeDomainError(w, err, "image could not be analyzed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"analysis": extraction})
}

type finalizeItemsRequest struct {
	UserUUID  string `json:"user_uuid"`
	ItemsJSON struct {
		Items []stockpot.Item `json:"items"`
	} `json:"items_json"`
}

// FinalizeItems fills in missing expiration dates and persists the
// reviewed items for a user.
func (h *Handlers) FinalizeItems(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[finalizeItemsRequest](w, r, h.bodyLimit)
	if !ok {
		return
	}
	if !requireField(w, req.UserUUID, "user_uuid") {
		return
	}

	items := receipt.PredictExpirations(req.ItemsJSON.Items, time.Now())

	inserted, err := h.store.InsertItems(r.Context(), req.UserUUID, items)
	if err != nil {
		writeDomainError(w, err, "items could not be saved")
		return
	}
	if inserted == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"status": "no items to insert"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "inserted": inserted})
}

// ListItems returns a user's inventory.
func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	userUUID := r.URL.Query().Get("user_uuid")
	if !requireField(w, userUUID, "user_uuid") {
		return
	}

	items, err := h.store.ListItems(r.Context(), userUUID)
	if err != nil {
		writeDomainError(w, err, "items unavailable")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// CreateProfile registers a user profile after signup.
func (h *Handlers) CreateProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := readJSON[stockpot.Profile](w, r, h.bodyLimit)
	if !ok {
		return
	}
	if !requireField(w, profile.ID, "id") || !requireField(w, profile.Username, "username") {
		return
	}

	if err := h.store.CreateProfile(r.Context(), profile); err != nil {
		writeDomainError(w, err, "profile could not be created")
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

// GetProfile returns a user profile by its UUID.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	profile, err := h.store.GetProfile(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "profile not found")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

type saveRecipeRequest struct {
	UserUUID string          `json:"user_uuid"`
	Recipe   stockpot.Recipe `json:"recipe"`
}

// SaveRecipe stores a recipe in the user's collection.
func (h *Handlers) SaveRecipe(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[saveRecipeRequest](w, r, h.bodyLimit)
	if !ok {
		return
	}
	if !requireField(w, req.UserUUID, "user_uuid") || !requireField(w, req.Recipe.Title, "recipe.title") {
		return
	}

	if err := h.store.SaveRecipe(r.Context(), req.UserUUID, &req.Recipe); err != nil {
		writeDomainError(w, err, "recipe could not be saved")
		return
	}

	writeJSON(w, http.StatusCreated, req.Recipe)
}

// ListRecipes returns a user's saved recipes.
func (h *Handlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	userUUID := r.URL.Query().Get("user_uuid")
	if !requireField(w, userUUID, "user_uuid") {
		return
	}

	recipes, err := h.store.ListRecipes(r.Context(), userUUID)
	if err != nil {
		writeDomainError(w, err, "recipes unavailable")
		return
	}

	writeJSON(w, http.StatusOK, recipes)
}

// readImageUpload reads the "file" part of a multipart upload, enforcing
// the upload size limit and rejecting non-image content.
func (h *Handlers) readImageUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit)
	if err := r.ParseMultipartForm(h.uploadLimit); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
		}
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no image file provided")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return nil, "", false
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		writeError(w, http.StatusBadRequest, "only image uploads are accepted")
		return nil, "", false
	}

	return data, mimeType, true
}

// archiveUpload keeps a copy of the uploaded receipt for later audits.
// Archive failures are logged, never surfaced to the client.
func (h *Handlers) archiveUpload(ctx context.Context, image []byte, mimeType string) {
	if h.archive == nil {
		return
	}

	ext := "bin"
	if parts := strings.SplitN(mimeType, "/", 2); len(parts) == 2 {
		ext = parts[1]
	}
	key := fmt.Sprintf("%s/%s.%s", time.Now().UTC().Format("2006-01-02"), uuid.NewString(), ext)

	if err := h.archive.Put(ctx, key, mimeType, image); err != nil {
		slog.Warn("failed to archive receipt upload", "key", key, "error", err)
	}
}

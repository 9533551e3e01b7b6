package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mreyes-dev/portfolio-site-backend/errs"
	"github.com/mreyes-dev/portfolio-site-backend/models"
	"github.com/mreyes-dev/portfolio-site-backend/services"
)

const maxUploadMemory = 32 << 20 // 32MB

type itemHandler struct {
	responder Responder
	logger    zerolog.Logger
	items     *services.ItemService
}

func newItemHandler(items *services.ItemService) itemHandler {
	logger := log.With().Str("handlerName", "itemHandler").Logger()

	return itemHandler{
		responder: NewResponder(logger),
		logger:    logger,
		items:     items,
	}
}

// list retrieves the collection sorted by position ascending
func (h itemHandler) list(entityType models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.items.List(entityType)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if items == nil {
			items = []*models.Item{}
		}
		h.responder.WriteJSON(w, items)
	}
}

// get retrieves a single item by id
func (h itemHandler) get(entityType models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		item, err := h.items.Get(entityType, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, item)
	}
}

// create persists a new item from a multipart form
func (h itemHandler) create(entityType models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := h.parseItemForm(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		item, err := h.items.Create(r.Context(), entityType, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, item)
	}
}

// update performs either the publish-only shortcut (JSON body with exactly
// the published key) or a full replace from multipart or JSON
func (h itemHandler) update(entityType models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		contentType := r.Header.Get("Content-Type")
		if strings.HasPrefix(contentType, "application/json") {
			h.updateFromJSON(w, r, entityType, id)
			return
		}

		input, err := h.parseItemForm(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		item, err := h.items.Update(r.Context(), entityType, id, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, item)
	}
}

func (h itemHandler) updateFromJSON(w http.ResponseWriter, r *http.Request, entityType models.EntityType, id uuid.UUID) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read request body")
		h.responder.WriteError(w, errs.NewBadRequestError("failed to read request body"))
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(bodyBytes, &raw); err != nil {
		h.logger.Error().Err(err).Str("body", string(bodyBytes)).Msg("Failed to decode update request body")
		h.responder.WriteError(w, errs.NewInvalidJSONError(err))
		return
	}

	// Publish-only partial update: a body holding nothing but the
	// published flag mutates only that field.
	if rawPublished, ok := raw["published"]; ok && len(raw) == 1 {
		published, err := decodePublished(rawPublished)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("published", "must be a boolean"))
			return
		}

		item, err := h.items.SetPublished(r.Context(), entityType, id, published)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, item)
		return
	}

	var payload itemJSONPayload
	if err := json.Unmarshal(bodyBytes, &payload); err != nil {
		h.logger.Error().Err(err).Str("body", string(bodyBytes)).Msg("Failed to decode update request body")
		h.responder.WriteError(w, errs.NewInvalidJSONError(err))
		return
	}

	item, err := h.items.Update(r.Context(), entityType, id, payload.toInput())
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	h.responder.WriteJSON(w, item)
}

// reorder atomically rewrites the collection's positions from orderedIds
func (h itemHandler) reorder(entityType models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			OrderedIDs []string `json:"orderedIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.OrderedIDs == nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Invalid request format"))
			return
		}

		items, err := h.items.Reorder(r.Context(), entityType, payload.OrderedIDs)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, items)
	}
}

// delete removes an item, cascading to its outcomes and stored media
func (h itemHandler) delete(entityType models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.items.Delete(r.Context(), entityType, id); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"message": fmt.Sprintf("%s deleted successfully", entityType),
		})
	}
}

func itemIDParam(r *http.Request) (uuid.UUID, error) {
	idStr := chi.URLParam(r, "itemID")
	if idStr == "" {
		return uuid.Nil, errs.NewBadRequestError("missing item id")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid item id")
	}
	return id, nil
}

// itemJSONPayload is a full update submitted as JSON (no new files).
type itemJSONPayload struct {
	Name                string                  `json:"name"`
	Role                string                  `json:"role"`
	Description         string                  `json:"description"`
	ShortDesc           string                  `json:"shortDesc"`
	GithubURL           string                  `json:"githubUrl"`
	LiveURL             string                  `json:"liveUrl"`
	DateRange           string                  `json:"dateRange"`
	Technologies        []string                `json:"technologies"`
	Published           bool                    `json:"published"`
	LearningOutcomes    []services.OutcomeInput `json:"learningOutcomes"`
	ExistingExtraImages *[]string               `json:"existingExtraImages"`
}

func (p itemJSONPayload) toInput() services.ItemInput {
	return services.ItemInput{
		Name:                p.Name,
		Role:                p.Role,
		Description:         p.Description,
		ShortDesc:           p.ShortDesc,
		GithubURL:           p.GithubURL,
		LiveURL:             p.LiveURL,
		DateRange:           p.DateRange,
		Technologies:        p.Technologies,
		Published:           p.Published,
		Outcomes:            p.LearningOutcomes,
		ExistingExtraImages: p.ExistingExtraImages,
	}
}

func decodePublished(raw json.RawMessage) (bool, error) {
	var asBool bool
	if err := json.Unmarshal(raw, &asBool); err == nil {
		return asBool, nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString == "true", nil
	}
	return false, fmt.Errorf("published is neither bool nor string")
}

// parseItemForm reads a multipart form into an ItemInput, buffering any
// attached files.
func (h itemHandler) parseItemForm(r *http.Request) (services.ItemInput, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse multipart form")
		return services.ItemInput{}, errs.NewMalformedPayloadError("multipart form", err)
	}

	input := services.ItemInput{
		Name:        r.FormValue("name"),
		Role:        r.FormValue("role"),
		Description: r.FormValue("description"),
		ShortDesc:   r.FormValue("shortDesc"),
		GithubURL:   r.FormValue("githubUrl"),
		LiveURL:     r.FormValue("liveUrl"),
		DateRange:   r.FormValue("dateRange"),
		Published:   r.FormValue("published") == "true",
	}

	if v := r.FormValue("technologies"); v != "" {
		if err := json.Unmarshal([]byte(v), &input.Technologies); err != nil {
			return services.ItemInput{}, errs.NewInvalidFieldError("technologies", "must be a JSON array of strings")
		}
	}

	if v := r.FormValue("learningOutcomes"); v != "" {
		if err := json.Unmarshal([]byte(v), &input.Outcomes); err != nil {
			return services.ItemInput{}, errs.NewInvalidFieldError("learningOutcomes", "must be a JSON array of {header, description}")
		}
	}

	if v := r.FormValue("existingExtraImages"); v != "" {
		var existing []string
		if err := json.Unmarshal([]byte(v), &existing); err != nil {
			return services.ItemInput{}, errs.NewInvalidFieldError("existingExtraImages", "must be a JSON array of URLs")
		}
		input.ExistingExtraImages = &existing
	}

	image, err := h.fileFromForm(r, "image")
	if err != nil {
		return services.ItemInput{}, err
	}
	input.Image = image

	gif, err := h.fileFromForm(r, "gif")
	if err != nil {
		return services.ItemInput{}, err
	}
	input.Gif = gif

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["extraImages"] {
			upload, err := bufferUpload(header)
			if err != nil {
				h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Failed to read uploaded file")
				return services.ItemInput{}, errs.NewMalformedPayloadError("file upload", err)
			}
			input.ExtraImages = append(input.ExtraImages, upload)
		}
	}

	return input, nil
}

func (h itemHandler) fileFromForm(r *http.Request, key string) (*services.FileUpload, error) {
	file, header, err := r.FormFile(key)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to read uploaded file")
		return nil, errs.NewMalformedPayloadError("file upload", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errs.NewMalformedPayloadError("file upload", err)
	}

	return &services.FileUpload{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

func bufferUpload(header *multipart.FileHeader) (services.FileUpload, error) {
	file, err := header.Open()
	if err != nil {
		return services.FileUpload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return services.FileUpload{}, err
	}

	return services.FileUpload{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/homefolio/realtorsites/internal/models"
	"github.com/homefolio/realtorsites/pkg/repository"
	"github.com/gorilla/mux"
)

// social_links must be an object of string URLs keyed by network name.
var socialLinksSchema = mustSchema(`{"type": "object", "additionalProperties": {"type": "string"}}`)

// Fields a claimed profile's owner may change. Everything else, including the
// claim state, is immutable through this endpoint.
var allowedRealtorFields = []string{
	"bio",
	"tagline",
	"website_url",
	"social_links",
	"specializations",
	"years_experience",
}

type RealtorsHandler struct {
	realtorRepo     repository.RealtorRepo
	testimonialRepo repository.TestimonialRepo
	cityRepo        repository.CityRepo
}

func NewRealtorsHandler(rr repository.RealtorRepo, tr repository.TestimonialRepo, cr repository.CityRepo) *RealtorsHandler {
	return &RealtorsHandler{realtorRepo: rr, testimonialRepo: tr, cityRepo: cr}
}

type realtorDetail struct {
	models.Realtor
	Testimonials []models.Testimonial `json:"testimonials"`
	CityInfo     *models.City         `json:"city_info"`
}

// GetRealtor returns the public projection plus testimonials and city info.
func (h *RealtorsHandler) GetRealtor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeError(w, "Realtor ID is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	realtor, err := h.realtorRepo.GetPublicRealtor(ctx, id)
	if err != nil {
		logger.Error("fetch realtor", slog.Any("err", err))
		writeError(w, fmt.Sprintf("Failed to fetch realtor: %v", err), http.StatusInternalServerError)
		return
	}
	if realtor == nil {
		writeError(w, "Realtor not found", http.StatusNotFound)
		return
	}

	testimonials, err := h.testimonialRepo.ListTestimonialsByRealtor(ctx, id)
	if err != nil {
		// don't fail the page over missing testimonials
		logger.Error("fetch testimonials", slog.String("realtor_id", id), slog.Any("err", err))
		testimonials = nil
	}
	if testimonials == nil {
		testimonials = []models.Testimonial{}
	}

	var cityInfo *models.City
	if realtor.CityID != nil {
		city, err := h.cityRepo.GetCity(ctx, *realtor.CityID)
		if err != nil {
			logger.Error("fetch city", slog.String("city_id", *realtor.CityID), slog.Any("err", err))
		} else {
			cityInfo = city
		}
	}

	writeJSON(w, map[string]any{"data": realtorDetail{
		Realtor:      *realtor,
		Testimonials: testimonials,
		CityInfo:     cityInfo,
	}}, http.StatusOK)
}

// UpdateRealtor applies the allow-listed subset of mutable fields.
func (h *RealtorsHandler) UpdateRealtor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeError(w, "Realtor ID is required", http.StatusBadRequest)
		return
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	fields := make(map[string]any)
	for _, f := range allowedRealtorFields {
		raw, ok := body[f]
		if !ok {
			continue
		}
		switch f {
		case "bio", "tagline", "website_url":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				writeError(w, fmt.Sprintf("%s must be a string", f), http.StatusBadRequest)
				return
			}
			fields[f] = s
		case "social_links":
			keyErrs, err := socialLinksSchema.ValidateBytes(ctx, raw)
			if err != nil || len(keyErrs) > 0 {
				writeError(w, "social_links must be an object of string URLs", http.StatusBadRequest)
				return
			}
			fields[f] = string(raw)
		case "specializations":
			var list []string
			if err := json.Unmarshal(raw, &list); err != nil {
				writeError(w, "specializations must be an array of strings", http.StatusBadRequest)
				return
			}
			b, _ := json.Marshal(list)
			fields[f] = string(b)
		case "years_experience":
			var n int
			if err := json.Unmarshal(raw, &n); err != nil || n < 0 {
				writeError(w, "years_experience must be a non-negative number", http.StatusBadRequest)
				return
			}
			fields[f] = n
		}
	}

	if len(fields) == 0 {
		writeError(w, "No valid fields to update", http.StatusBadRequest)
		return
	}

	updated, err := h.realtorRepo.UpdateRealtorFields(ctx, id, fields)
	if err != nil {
		logger.Error("update realtor", slog.String("realtor_id", id), slog.Any("err", err))
		writeError(w, fmt.Sprintf("Failed to update realtor: %v", err), http.StatusInternalServerError)
		return
	}
	if updated == nil {
		writeError(w, "Failed to update realtor", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"data":    updated,
		"message": "Realtor updated successfully",
	}, http.StatusOK)
}

type paginationInfo struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// ListRealtors is the public listing/search endpoint.
func (h *RealtorsHandler) ListRealtors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 10
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	offset := 0
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	sortBy := q.Get("sortBy")
	switch sortBy {
	case "name", "experience":
	default:
		sortBy = "performance"
	}
	sortOrder := strings.ToLower(q.Get("sortOrder"))
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	f := repository.RealtorFilter{
		City:           q.Get("city"),
		Province:       q.Get("province"),
		Specialization: q.Get("specialization"),
		FeaturedOnly:   q.Get("featured") == "true",
		SortBy:         sortBy,
		SortOrder:      sortOrder,
		Limit:          limit,
		Offset:         offset,
	}

	realtors, err := h.realtorRepo.ListRealtors(r.Context(), f)
	if err != nil {
		logger.Error("list realtors", slog.Any("err", err))
		writeError(w, fmt.Sprintf("Failed to fetch realtors: %v", err), http.StatusInternalServerError)
		return
	}
	if realtors == nil {
		realtors = []models.Realtor{}
	}

	total, err := h.realtorRepo.CountRealtors(r.Context())
	if err != nil {
		logger.Error("count realtors", slog.Any("err", err))
		writeError(w, fmt.Sprintf("Failed to fetch realtors: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"data": realtors,
		"pagination": paginationInfo{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+limit) < total,
		},
		"filters": map[string]any{
			"city":           f.City,
			"province":       f.Province,
			"featured":       q.Get("featured"),
			"specialization": f.Specialization,
			"sortBy":         sortBy,
			"sortOrder":      sortOrder,
		},
	}, http.StatusOK)
}

package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/api"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/config"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/media"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/metadata"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/verification"
)

// Verification exposes the evidence review workflow
type Verification struct {
	Service *verification.Service
	Media   media.Store
}

type actionRequest struct {
	Notes string `json:"notes"`
}

type locationRequest struct {
	CaseID   string               `json:"caseId"`
	Region   string               `json:"region"`
	Notes    string               `json:"notes"`
	Metadata models.ImageMetadata `json:"metadata"`
}

type analyzeResponse struct {
	Metadata        models.ImageMetadata `json:"metadata"`
	SuggestedRegion models.Region        `json:"suggestedRegion,omitempty"`
}

// QueueHandler returns the cases waiting on evidence review, oldest first
func (v Verification) QueueHandler(w http.ResponseWriter, r *http.Request) {
	queue := v.Service.Queue(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cases": queue,
		"total": len(queue),
	})
}

// ActionHandler applies review, verify or reject to a case
func (v Verification) ActionHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	action, err := verification.ParseAction(vars["action"])
	if err != nil {
		config.ErrorStatus("unknown verification action", http.StatusBadRequest, w, err)
		return
	}

	var req actionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
			return
		}
	}

	saved, err := v.Service.Apply(r.Context(), vars["case_id"], action, api.AdminEmail(r), req.Notes)
	durable, err := nonFatal(err)
	if err != nil {
		caseError("failed to apply verification action", w, err)
		return
	}
	writeJSON(w, http.StatusOK, caseResponse{Case: saved, Durable: durable})
}

// VerifyLocationHandler records a location verification case from an uploaded image
// (multipart field "image") or from metadata posted as JSON
func (v Verification) VerifyLocationHandler(w http.ResponseWriter, r *http.Request) {
	req := verification.LocationRequest{Reviewer: api.AdminEmail(r)}

	if isMultipart(r) {
		fileName, data, err := readUpload(w, r, "image")
		if err != nil {
			config.ErrorStatus("failed to read upload", http.StatusBadRequest, w, err)
			return
		}
		req.Metadata = metadata.Extract(fileName, data, time.Now())
		req.CaseID = r.FormValue("caseId")
		req.Region = r.FormValue("region")
		req.Notes = r.FormValue("notes")

		url, err := v.Media.Save(r.Context(), fileName, data)
		if err != nil {
			config.ErrorStatus("failed to store image", http.StatusBadGateway, w, err)
			return
		}
		req.Evidence = &models.Evidence{
			Type:        metadata.EvidenceType(req.Metadata.MimeType),
			Description: "Location verification image",
			FileURL:     url,
			FileName:    fileName,
		}
	} else {
		var body locationRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
			return
		}
		req.CaseID = body.CaseID
		req.Region = body.Region
		req.Notes = body.Notes
		req.Metadata = body.Metadata
	}

	saved, err := v.Service.VerifyLocation(r.Context(), req)
	durable, err := nonFatal(err)
	if err != nil {
		caseError("failed to verify location", w, err)
		return
	}
	writeJSON(w, http.StatusCreated, caseResponse{Case: saved, Durable: durable})
}

// AnalyzeImageHandler extracts metadata from an uploaded image without storing anything
func (v Verification) AnalyzeImageHandler(w http.ResponseWriter, r *http.Request) {
	fileName, data, err := readUpload(w, r, "image")
	if err != nil {
		config.ErrorStatus("failed to read upload", http.StatusBadRequest, w, err)
		return
	}
	resp := analyzeResponse{Metadata: metadata.Extract(fileName, data, time.Now())}
	if gps := resp.Metadata.GPS; gps != nil {
		if region, ok := models.NearestRegion(gps.Latitude, gps.Longitude); ok {
			resp.SuggestedRegion = region
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}

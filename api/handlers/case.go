package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/config"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/intake"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/localstore"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/media"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/metadata"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/reconcile"
)

// maxUploadSize caps evidence and image uploads
const maxUploadSize = 25 << 20

// Case exposes the reconciled case view
type Case struct {
	Cases *reconcile.Service
	Media media.Store
}

type caseListResponse struct {
	Cases    []models.Case `json:"cases"`
	Total    int           `json:"total"`
	Degraded bool          `json:"degraded"`
	RemoteOK bool          `json:"remoteOk"`
	LocalOK  bool          `json:"localOk"`
	TakenAt  time.Time     `json:"takenAt"`
}

type caseResponse struct {
	Case    models.Case `json:"case"`
	Durable bool        `json:"durable"`
}

// caseUpdate is the PATCH body. Absent fields are left alone.
type caseUpdate struct {
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	AssignedTo *string `json:"assignedTo"`
}

// CasesHandler returns the reconciled case list, filtered by region, status, priority and
// type, and ordered by sort
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseFilter(q.Get("region"), q.Get("status"), q.Get("priority"), q.Get("type"))
	if err != nil {
		config.ErrorStatus("invalid filter", http.StatusBadRequest, w, err)
		return
	}
	sortKey, err := reconcile.ParseSortKey(q.Get("sort"))
	if err != nil {
		config.ErrorStatus("invalid sort", http.StatusBadRequest, w, err)
		return
	}

	snap := c.Cases.Snapshot()
	if snap.Seq == 0 || q.Get("refresh") == "true" {
		snap = c.Cases.Refresh(r.Context())
	}

	cases := reconcile.Sort(filter.Apply(snap.Cases), sortKey)
	writeJSON(w, http.StatusOK, caseListResponse{
		Cases:    cases,
		Total:    len(cases),
		Degraded: snap.Degraded(),
		RemoteOK: snap.RemoteOK,
		LocalOK:  snap.LocalOK,
		TakenAt:  snap.TakenAt,
	})
}

// CaseStatsHandler returns case counts for the dashboard
func (c Case) CaseStatsHandler(w http.ResponseWriter, r *http.Request) {
	snap := c.Cases.Snapshot()
	if snap.Seq == 0 {
		snap = c.Cases.Refresh(r.Context())
	}
	writeJSON(w, http.StatusOK, reconcile.Summarize(snap.Cases))
}

// CaseByIDHandler returns a single case
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	found, err := c.Cases.Find(r.Context(), caseID)
	if err != nil {
		caseError("failed to get case by ID", w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// UpdateCaseHandler edits a case's status, priority or assignment
func (c Case) UpdateCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var req caseUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	found, err := c.Cases.Find(r.Context(), caseID)
	if err != nil {
		caseError("failed to get case by ID", w, err)
		return
	}
	updated, err := applyUpdate(found, req)
	if err != nil {
		caseError("invalid case update", w, err)
		return
	}

	saved, err := c.Cases.Save(r.Context(), updated)
	durable, err := nonFatal(err)
	if err != nil {
		caseError("failed to update case", w, err)
		return
	}
	zap.S().Infow("case updated", "caseId", saved.ID, "status", saved.Status, "priority", saved.Priority, "assignedTo", saved.AssignedTo)
	writeJSON(w, http.StatusOK, caseResponse{Case: saved, Durable: durable})
}

// applyUpdate validates req against the case and returns the edited copy
func applyUpdate(c models.Case, req caseUpdate) (models.Case, error) {
	if req.Status != nil {
		to, err := models.NormalizeCaseStatus(*req.Status)
		if err != nil {
			return c, &intake.ValidationError{Field: "status", Message: err.Error()}
		}
		if !c.Status.CanTransition(to) {
			return c, fmt.Errorf("%w: cannot move case from %s to %s", errConflict, c.Status, to)
		}
		c.Status = to
	}
	if req.Priority != nil {
		p, err := models.ParsePriority(*req.Priority)
		if err != nil {
			return c, &intake.ValidationError{Field: "priority", Message: err.Error()}
		}
		c.Priority = p
	}
	if req.AssignedTo != nil {
		c.AssignedTo = strings.TrimSpace(*req.AssignedTo)
	}
	return c, nil
}

// DeleteCaseHandler removes a case from both stores
func (c Case) DeleteCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	if _, err := c.Cases.Find(r.Context(), caseID); err != nil {
		caseError("failed to get case by ID", w, err)
		return
	}
	if err := c.Cases.Delete(r.Context(), caseID); err != nil {
		caseError("failed to delete case", w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "successfully deleted case"}`))
}

// UploadEvidenceHandler attaches an uploaded file to a case. The first photo enrolls the case
// in verification.
func (c Case) UploadEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	found, err := c.Cases.Find(r.Context(), caseID)
	if err != nil {
		caseError("failed to get case by ID", w, err)
		return
	}

	fileName, data, err := readUpload(w, r, "file")
	if err != nil {
		config.ErrorStatus("failed to read upload", http.StatusBadRequest, w, err)
		return
	}
	md := metadata.Extract(fileName, data, time.Now())

	url, err := c.Media.Save(r.Context(), fileName, data)
	if err != nil {
		config.ErrorStatus("failed to store evidence", http.StatusBadGateway, w, err)
		return
	}

	ev := models.Evidence{
		Type:        metadata.EvidenceType(md.MimeType),
		Description: strings.TrimSpace(r.FormValue("description")),
		FileURL:     url,
		FileName:    fileName,
	}
	found.Evidence = append(found.Evidence, ev)
	if ev.Type == models.EvidencePhoto && found.Verification == "" {
		found.Verification = models.VerificationPending
	}

	saved, err := c.Cases.Save(r.Context(), found)
	durable, err := nonFatal(err)
	if err != nil {
		caseError("failed to save evidence", w, err)
		return
	}
	zap.S().Infow("evidence attached", "caseId", saved.ID, "type", ev.Type, "file", fileName)
	writeJSON(w, http.StatusCreated, caseResponse{Case: saved, Durable: durable})
}

func parseFilter(region, status, priority, caseType string) (reconcile.Filter, error) {
	var f reconcile.Filter
	if region != "" {
		rg, ok := models.ParseRegion(region)
		if !ok {
			return f, fmt.Errorf("unknown region %q", region)
		}
		f.Region = rg
	}
	if status != "" {
		st, err := models.NormalizeCaseStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if priority != "" {
		p, err := models.ParsePriority(priority)
		if err != nil {
			return f, err
		}
		f.Priority = p
	}
	if caseType != "" {
		f.Type = intake.TypeForSubject(caseType)
		if strings.EqualFold(strings.TrimSpace(caseType), models.TypeLocationVerification) {
			f.Type = models.TypeLocationVerification
		}
	}
	return f, nil
}

// nonFatal treats a local persistence failure as success that is not durable
func nonFatal(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	var pe *localstore.PersistenceError
	if errors.As(err, &pe) {
		zap.S().Warnw("change kept in memory only", "error", err)
		return false, nil
	}
	return false, err
}

// readUpload reads one multipart file field
func readUpload(w http.ResponseWriter, r *http.Request, field string) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", nil, fmt.Errorf("parsing multipart form: %w", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("missing %q file: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", header.Filename, err)
	}
	if len(data) == 0 {
		return "", nil, errors.New("uploaded file is empty")
	}
	return header.Filename, data, nil
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/config"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/intake"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/notify"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/reconcile"
)

// alertTimeout bounds the background alert email for a new case
const alertTimeout = 30 * time.Second

// Report handles citizen report intake
type Report struct {
	Cases    *reconcile.Service
	Notifier notify.Notifier
	Now      func() time.Time
}

// SubmitReportHandler validates a citizen report and stores it as a new case. The case goes
// to the remote store when it is reachable and to the local pending queue otherwise.
func (re Report) SubmitReportHandler(w http.ResponseWriter, r *http.Request) {
	var sub models.ReportSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	now := time.Now
	if re.Now != nil {
		now = re.Now
	}
	built, err := intake.Build(sub, now().UTC())
	if err != nil {
		caseError("invalid report", w, err)
		return
	}

	saved, err := re.Cases.Submit(r.Context(), built)
	durable, err := nonFatal(err)
	if err != nil {
		caseError("failed to submit report", w, err)
		return
	}

	if re.Notifier != nil {
		go func(c models.Case) {
			ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
			defer cancel()
			if err := re.Notifier.CaseCreated(ctx, c); err != nil {
				zap.S().Warnw("failed to send case alert", "caseId", c.ID, "error", err)
			}
		}(saved)
	}

	zap.S().Infow("report submitted",
		"caseId", saved.ID,
		"region", saved.Region,
		"priority", saved.Priority,
		"queued", saved.Source == models.OriginLocalPending,
	)
	writeJSON(w, http.StatusCreated, models.SubmitReportResponse{
		Success: true,
		CaseID:  saved.ID,
		Status:  string(saved.Status),
		Queued:  saved.Source == models.OriginLocalPending,
		Durable: durable,
	})
}

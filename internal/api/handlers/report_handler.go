package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"backoffice-service/internal/reporting"
)

type ReportHandler struct {
	reporting *reporting.Service
	logger    *slog.Logger
}

func NewReportHandler(svc *reporting.Service, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reporting: svc, logger: logger}
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reporting.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "build dashboard")
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func (h *ReportHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	tid, ok := intParam(w, r, "tid", "transaction")
	if !ok {
		return
	}

	doc, err := h.reporting.Receipt(r.Context(), tid)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "render receipt")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Content)
}

package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"backoffice-service/internal/models"
	"backoffice-service/internal/observability"
	"backoffice-service/internal/sales"
)

const maxHistoryRows = 100

var statusLabels = map[models.SaleStatus]string{
	models.StatusPendingScheduling: "Pendiente",
	models.StatusScheduled:         "Programada",
	models.StatusInDelivery:        "En reparto",
	models.StatusDelivered:         "Entregada",
}

var historyTemplate = template.Must(template.New("salesHistory").Funcs(template.FuncMap{
	"status": func(s models.SaleStatus) string { return statusLabels[s] },
}).Parse(`
<div id="sales-history">
<table class="sales-table">
<thead><tr><th>N°</th><th>Fecha</th><th>Cliente</th><th>Vendedor</th><th>Estado</th><th>Total</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.TransactionID}}</td>
<td>{{.Date}}</td>
<td>{{.CustomerName}}</td>
<td>{{.SellerName}}</td>
<td><span class="status-badge status-{{.Status}}">{{status .Status}}</span></td>
<td><strong>${{printf "%.2f" .Total}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

// StreamHandler pushes the sales history table to the browser and
// re-renders it whenever the feed signals a change.
type StreamHandler struct {
	sales  *sales.Service
	feed   *sales.Feed
	logger *slog.Logger
}

func NewStreamHandler(svc *sales.Service, feed *sales.Feed, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{sales: svc, feed: feed, logger: logger}
}

func renderHistory(history []models.Sale) (string, error) {
	if len(history) > maxHistoryRows {
		history = history[:maxHistoryRows]
	}
	var buf strings.Builder
	err := historyTemplate.Execute(&buf, history)
	return buf.String(), err
}

func (h *StreamHandler) push(r *http.Request, sse *datastar.ServerSentEventGenerator) error {
	history, err := h.sales.History(r.Context())
	if err != nil {
		return err
	}
	html, err := renderHistory(history)
	if err != nil {
		return err
	}
	return sse.PatchElements(html)
}

func (h *StreamHandler) SalesHistory(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	// The stream outlives the server write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug("clear write deadline", "error", err)
	}

	signals, cancel := h.feed.Subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)
	if err := h.push(r, sse); err != nil {
		logger.Error("push sales history", "error", err)
		return
	}
	logger.Debug("sales stream opened", "subscribers", h.feed.Subscribers())

	for {
		select {
		case <-r.Context().Done():
			logger.Debug("sales stream closed")
			return
		case <-signals:
			if err := h.push(r, sse); err != nil {
				logger.Warn("push sales history", "error", err)
				return
			}
		}
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"stockservice/internal/logging"
	"stockservice/internal/service"
	"stockservice/internal/stock"
)

type handler struct {
	svc     *service.Service
	timeout time.Duration
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
}

type purchaseBody struct {
	Amount *decimal.Decimal `json:"amount"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func newMux(h *handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /stock/{symbol}", h.getStock)
	mux.HandleFunc("POST /stock/{symbol}", h.postPurchase)
	mux.HandleFunc("GET /stock/{symbol}/quote", h.getQuote)
	mux.HandleFunc("GET /stock/{symbol}/profile", h.getProfile)
	return mux
}

func (h *handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *handler) getStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	rec, err := h.svc.GetStockRecord(ctx, r.PathValue("symbol"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) postPurchase(w http.ResponseWriter, r *http.Request) {
	var b purchaseBody
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Detail: err.Error()})
		return
	}
	if b.Amount == nil {
		writeError(w, r, stock.NewValidationError("amount", "", "is required"))
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	sym, err := stock.NormalizeSymbol(r.PathValue("symbol"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.svc.RecordPurchase(ctx, sym, *b.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{
		Message: b.Amount.String() + " units of stock " + sym + " were added to your stock record",
	})
}

func (h *handler) getQuote(w http.ResponseWriter, r *http.Request) {
	var date stock.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := stock.ParseDate(raw)
		if err != nil {
			writeError(w, r, stock.NewValidationError("date", raw, "must be YYYY-MM-DD"))
			return
		}
		date = d
	}

	ctx, cancel := h.context(r)
	defer cancel()

	q, err := h.svc.FetchQuote(ctx, r.PathValue("symbol"), date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	p, err := h.svc.FetchProfile(ctx, r.PathValue("symbol"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var (
		verr   *stock.ValidationError
		terr   *stock.UpstreamTransportError
		shape  *stock.UpstreamShapeError
		scrape *stock.ScrapeStructureError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &terr):
		switch terr.Status {
		case http.StatusNotFound:
			return http.StatusNotFound
		case http.StatusGatewayTimeout:
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.As(err, &shape), errors.As(err, &scrape):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorDetail(err error) any {
	var (
		verr   *stock.ValidationError
		terr   *stock.UpstreamTransportError
		shape  *stock.UpstreamShapeError
		scrape *stock.ScrapeStructureError
	)
	switch {
	case errors.As(err, &verr):
		return map[string]string{"field": verr.Field, "message": verr.Message}
	case errors.As(err, &terr):
		return map[string]any{"upstream": terr.Upstream, "status": terr.Status, "body": terr.Body}
	case errors.As(err, &shape):
		return map[string]any{"upstream": shape.Upstream, "details": shape.Details}
	case errors.As(err, &scrape):
		return map[string]string{"field": scrape.Field}
	}
	return nil
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("request rejected")
	}

	if status == http.StatusInternalServerError {
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Detail: errorDetail(err)})
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Spok95/monument-calc/internal/domain/calculator"
	"github.com/Spok95/monument-calc/internal/domain/orders"
	"github.com/Spok95/monument-calc/internal/domain/wizard"
)

const maxBodyBytes = 64 << 10

type CatalogReader interface {
	ActiveCatalog(ctx context.Context) (calculator.Catalog, error)
}

type OrderSubmitter interface {
	Submit(ctx context.Context, key string, req orders.Request) (*orders.Order, error)
}

type QuoteMetrics interface {
	QuoteComputed(channel string)
}

// API — публичная часть калькулятора для сайта.
type API struct {
	catalog CatalogReader
	orders  OrderSubmitter
	metrics QuoteMetrics
	log     *slog.Logger
}

func NewAPI(catalog CatalogReader, ord OrderSubmitter, m QuoteMetrics, log *slog.Logger) *API {
	return &API{catalog: catalog, orders: ord, metrics: m, log: log}
}

func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(a.logRequests)

	r.Route("/calculator", func(r chi.Router) {
		r.Get("/catalog", a.getCatalog)
		r.Get("/parts/{partID}/materials", a.getMaterials)
		r.Get("/parts/{partID}/sizes", a.getSizes)
		r.Post("/quote", a.postQuote)
	})
	r.Post("/orders", a.postOrder)
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type quoteRequest struct {
	Selections []wizard.Line `json:"selections"`
}

type orderRequest struct {
	Name       string        `json:"name"`
	Phone      string        `json:"phone"`
	Message    string        `json:"message"`
	Selections []wizard.Line `json:"selections"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (a *API) getCatalog(w http.ResponseWriter, r *http.Request) {
	view, ok := a.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) getMaterials(w http.ResponseWriter, r *http.Request) {
	p, ok := a.part(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Materials)
}

func (a *API) getSizes(w http.ResponseWriter, r *http.Request) {
	p, ok := a.part(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Sizes)
}

func (a *API) postQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !decode(w, r, &req) {
		return
	}
	view, ok := a.view(w, r)
	if !ok {
		return
	}
	sub, err := wizard.Quote(view, req.Selections)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	if a.metrics != nil {
		a.metrics.QuoteComputed("api")
	}
	writeJSON(w, http.StatusOK, sub)
}

func (a *API) postOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decode(w, r, &req) {
		return
	}

	oreq := orders.Request{
		Name:    req.Name,
		Phone:   req.Phone,
		Message: req.Message,
		Source:  orders.SourceContact,
		Channel: orders.ChannelAPI,
	}
	if len(req.Selections) > 0 {
		view, ok := a.view(w, r)
		if !ok {
			return
		}
		sub, err := wizard.Quote(view, req.Selections)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
			return
		}
		oreq.Message = joinNonEmpty(orders.RenderDraft(sub), strings.TrimSpace(req.Message))
		oreq.Total = sub.TotalPrice
		oreq.Source = sub.Source
	}

	o, err := a.orders.Submit(r.Context(), "ip:"+clientIP(r), oreq)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, orderResponse{ID: o.ID.String(), Status: string(o.Status)})
	case errors.Is(err, orders.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, orders.ErrRateLimited):
		if wait, ok := orders.RetryAfter(err); ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		}
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many orders, try again later"})
	default:
		a.log.Error("order submit failed", "err", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "order could not be delivered"})
	}
}

func (a *API) view(w http.ResponseWriter, r *http.Request) (calculator.Catalog, bool) {
	view, err := a.catalog.ActiveCatalog(r.Context())
	if err != nil {
		a.log.Error("load catalog failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "catalog unavailable"})
		return calculator.Catalog{}, false
	}
	return view, true
}

// part — активная деталь из URL; скрытая деталь отдаёт 404.
func (a *API) part(w http.ResponseWriter, r *http.Request) (calculator.Part, bool) {
	view, ok := a.view(w, r)
	if !ok {
		return calculator.Part{}, false
	}
	id := chi.URLParam(r, "partID")
	p, ok := view.FindPart(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "part not found"})
		return calculator.Part{}, false
	}
	return p, true
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Debug("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientIP — адрес без порта; RealIP уже подставил X-Forwarded-For.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}

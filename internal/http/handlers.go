package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"minimarket/internal/composer"
	"minimarket/internal/daterange"
	"minimarket/internal/domain"
	"minimarket/internal/excel"
	"minimarket/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

// Handler owns the HTTP surface plus the single register session. One
// till, one composer; the mutex serializes the rare overlapping
// request.
type Handler struct {
	svc *service.Service

	mu       sync.Mutex
	register *composer.Composer
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc, register: composer.New()}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// ---- products ----

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListProducts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) GetProductByCode(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	product, err := h.svc.GetProductByCode(r.Context(), code)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input domain.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateProduct(r.Context(), input)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var input domain.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.UpdateProduct(r.Context(), id, input)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- sales ----

type saleLinesRequest struct {
	Lines []domain.SaleLineInput `json:"lines"`
}

func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req saleLinesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saleID, err := h.svc.CreateSale(r.Context(), req.Lines)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"sale_id": saleID})
}

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	from, to, err := salesRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListSales(r.Context(), from, to)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) SalesTotal(w http.ResponseWriter, r *http.Request) {
	from, to, err := salesRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if from == nil || to == nil {
		writeError(w, http.StatusBadRequest, "a resolved range is required (filter+anchor or from+to)")
		return
	}
	total, err := h.svc.SalesTotalBetween(r.Context(), *from, *to)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total})
}

func (h *Handler) GetSaleLines(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lines, err := h.svc.GetSaleLines(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": lines, "count": len(lines)})
}

func (h *Handler) UpdateSaleLines(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req saleLinesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.UpdateSaleLines(r.Context(), id, req.Lines); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteSale(r.Context(), id); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- register (sale in progress) ----

type stageLineRequest struct {
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity float64 `json:"quantity"`
}

func (h *Handler) RegisterState(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	lines := h.register.Lines()
	total := h.register.Total()
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"lines": lines, "total": total})
}

func (h *Handler) RegisterStageLine(w http.ResponseWriter, r *http.Request) {
	var req stageLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.svc.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.register.AddLine(*product, req.Quantity); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lines": h.register.Lines(),
		"total": h.register.Total(),
	})
}

func (h *Handler) RegisterSetQuantity(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.register.SetLineQuantity(index, req.Quantity); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lines": h.register.Lines(),
		"total": h.register.Total(),
	})
}

func (h *Handler) RegisterRemoveLine(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.register.RemoveLine(index); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lines": h.register.Lines(),
		"total": h.register.Total(),
	})
}

func (h *Handler) RegisterCancel(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	h.register.Clear()
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RegisterCommit(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	saleID, err := h.register.Commit(r.Context(), h.svc.Store())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"sale_id": saleID})
}

// ---- exports ----

func (h *Handler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListProducts(r.Context(), "")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	file, err := excel.ProductsWorkbook(items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeWorkbook(w, "products.xlsx", file)
}

func (h *Handler) ExportSales(w http.ResponseWriter, r *http.Request) {
	from, to, err := salesRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListSales(r.Context(), from, to)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	file, err := excel.SalesWorkbook(items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeWorkbook(w, "sales.xlsx", file)
}

// ---- helpers ----

// salesRange resolves either a coarse filter (filter+anchor) or
// explicit from/to query parameters into timestamp boundaries.
func salesRange(r *http.Request) (*time.Time, *time.Time, error) {
	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("filter")); raw != "" {
		filter, err := daterange.ParseFilter(raw)
		if err != nil {
			return nil, nil, err
		}
		anchor := time.Now()
		if anchorRaw := strings.TrimSpace(query.Get("anchor")); anchorRaw != "" {
			parsed, err := time.Parse("2006-01-02", anchorRaw)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid anchor date %q (want YYYY-MM-DD)", anchorRaw)
			}
			anchor = parsed
		}
		from, to, err := daterange.Resolve(filter, anchor)
		if err != nil {
			return nil, nil, err
		}
		return &from, &to, nil
	}

	from, err := parseOptionalTime(query.Get("from"), false)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid from: %w", err)
	}
	to, err := parseOptionalTime(query.Get("to"), true)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid to: %w", err)
	}
	return from, to, nil
}

// writeLedgerError maps the ledger's error kinds to status codes so
// the caller can always render a specific message.
func writeLedgerError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	var stock *domain.InsufficientStockError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &stock):
		writeError(w, http.StatusConflict, stock.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrEmptySale):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeWorkbook(w http.ResponseWriter, filename string, file *excelize.File) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	// Headers are committed once writing starts; a mid-stream failure
	// cannot be reported to the client anymore.
	_, _ = file.WriteTo(w)
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

func parseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid line index")
	}
	return index, nil
}

// parseOptionalTime accepts an RFC3339 timestamp or a bare date. The
// range is inclusive on both ends, so a bare date used as the upper
// boundary resolves to the end of that day, not its midnight.
func parseOptionalTime(raw string, endOfDay bool) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("want RFC3339 or YYYY-MM-DD")
	}
	if endOfDay {
		parsed = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &parsed, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

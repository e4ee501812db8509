package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"exchangebank/internal/service"
)

// AddRateRequest represents the request body for registering a rate
type AddRateRequest struct {
	From string `json:"from" example:"USD"`
	To   string `json:"to" example:"EUR"`
	Rate string `json:"rate" example:"0.75"`
}

// RateResponse represents a registered or resolved rate
type RateResponse struct {
	From string  `json:"from" example:"USD"`
	To   string  `json:"to" example:"EUR"`
	Rate string  `json:"rate" example:"0.75"`
	Date *string `json:"date,omitempty" example:"2024-01-15"`
}

// ConvertResponse represents a converted amount
type ConvertResponse struct {
	From       string  `json:"from" example:"USD"`
	Currency   string  `json:"currency" example:"EUR"`
	Amount     string  `json:"amount" example:"7.5"`
	Fractional string  `json:"fractional" example:"750"`
	Rate       *string `json:"rate,omitempty" example:"0.75"`
	Date       *string `json:"date,omitempty" example:"2024-01-15"`
}

// ImportResponse represents the response for a rate import request
type ImportResponse struct {
	JobID string `json:"job_id" example:"123e4567-e89b-12d3-a456-426614174000"`
}

// HandleAddRate godoc
// @Summary Register an exchange rate
// @Description Stores the rate for converting one unit of "from" into "to". The inverse rate is not inferred.
// @Tags rates
// @Accept json
// @Produce json
// @Param request body AddRateRequest true "Currency pair and positive decimal rate"
// @Success 201 {object} RateResponse "Rate registered"
// @Failure 400 {object} ErrorResponse "Invalid currency code or rate"
// @Failure 409 {object} ErrorResponse "Rate store is read-only"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates [post]
func HandleAddRate(svc service.ExchangeServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddRateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
			return
		}
		if req.From == "" || req.To == "" || req.Rate == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "from, to and rate are required"})
			return
		}

		res, err := svc.AddRate(r.Context(), req.From, req.To, req.Rate)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, RateResponse{From: res.From, To: res.To, Rate: res.Rate})
	}
}

// HandleGetRate godoc
// @Summary Get the exchange rate for a currency pair
// @Description Resolves the stored rate for the pair. With a date, dated stores return the latest rate on or before it; dateless stores ignore it.
// @Tags rates
// @Produce json
// @Param from query string true "Source currency code" minlength(3) maxlength(3)
// @Param to query string true "Target currency code" minlength(3) maxlength(3)
// @Param date query string false "Rate date (YYYY-MM-DD)" format(date)
// @Success 200 {object} RateResponse "Rate found"
// @Failure 400 {object} ErrorResponse "Invalid currency code or date"
// @Failure 404 {object} ErrorResponse "No rate known for the pair"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates [get]
func HandleGetRate(svc service.ExchangeServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		from, to := q.Get("from"), q.Get("to")
		if from == "" || to == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "from and to query params are required"})
			return
		}

		res, err := svc.GetRate(r.Context(), from, to, q.Get("date"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, RateResponse{From: res.From, To: res.To, Rate: res.Rate, Date: res.Date})
	}
}

// HandleConvert godoc
// @Summary Convert an amount between currencies
// @Description Converts an amount of major units. An explicit rate bypasses the store. The result is rounded with the requested policy, else the bank default.
// @Tags convert
// @Produce json
// @Param amount query string true "Amount in major units of the source currency" example(10.00)
// @Param from query string true "Source currency code" minlength(3) maxlength(3)
// @Param to query string true "Target currency code" minlength(3) maxlength(3)
// @Param date query string false "Rate date (YYYY-MM-DD)" format(date)
// @Param rate query string false "Explicit rate overriding the store"
// @Param rounding query string false "Rounding policy" Enums(none, half_up, half_even, floor, ceil, truncate)
// @Success 200 {object} ConvertResponse "Converted amount"
// @Failure 400 {object} ErrorResponse "Invalid amount, currency, date, rate or rounding"
// @Failure 404 {object} ErrorResponse "No rate known for the pair"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /convert [get]
func HandleConvert(svc service.ExchangeServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		req := service.ConvertRequest{
			Amount:   q.Get("amount"),
			From:     q.Get("from"),
			To:       q.Get("to"),
			Date:     q.Get("date"),
			Rate:     q.Get("rate"),
			Rounding: q.Get("rounding"),
		}
		if req.Amount == "" || req.From == "" || req.To == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "amount, from and to query params are required"})
			return
		}

		res, err := svc.Convert(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ConvertResponse{
			From:       res.From,
			Currency:   res.To,
			Amount:     res.Amount,
			Fractional: res.Fractional,
			Rate:       res.Rate,
			Date:       res.Date,
		})
	}
}

// HandleRequestImport godoc
// @Summary Request an asynchronous rate import
// @Description Schedules the configured importer as a background job. Returns immediately with a job_id.
// @Tags rates
// @Produce json
// @Success 202 {object} ImportResponse "Import accepted"
// @Failure 409 {object} ErrorResponse "No importer configured"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/import [post]
func HandleRequestImport(svc service.ExchangeServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := svc.RequestImport(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusAccepted, ImportResponse{JobID: jobID})
	}
}

// writeServiceError maps service errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCurrency),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidRate),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidRounding):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrUnknownRate):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrReadOnlyStore), errors.Is(err, service.ErrNoImporter):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
	}
}

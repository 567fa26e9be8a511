package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mchmarny/bureau/pkg/behavior"
	"github.com/mchmarny/bureau/pkg/bureau"
	"github.com/mchmarny/bureau/pkg/feature"
	"github.com/mchmarny/bureau/pkg/loan"
	"github.com/mchmarny/bureau/pkg/source"
)

const (
	maxBehaviorBodyBytes = 1 << 20
	reloadTimeout        = 10 * time.Minute
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeSourceError maps pipeline errors to a status code.
func writeSourceError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, source.ErrSourceUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "tradeline source unavailable")
		return
	}
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

func pathCRN(w http.ResponseWriter, r *http.Request) (int64, bool) {
	crn, err := strconv.ParseInt(r.PathValue("crn"), 10, 64)
	if err != nil || crn <= 0 {
		writeError(w, http.StatusBadRequest, "invalid customer reference number")
		return 0, false
	}
	return crn, true
}

func customerVectors(p *bureau.Pipeline, w http.ResponseWriter, r *http.Request) (map[loan.Type]*feature.Vector, bool) {
	crn, ok := pathCRN(w, r)
	if !ok {
		return nil, false
	}
	vectors, err := p.ExtractFeatures(r.Context(), crn)
	if err != nil {
		writeSourceError(w, err, "failed to extract features")
		return nil, false
	}
	return vectors, true
}

func healthHandler(p *bureau.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := map[string]any{"status": "ok"}
		if t := p.Cache().LoadedAt(); !t.IsZero() {
			status["loaded_at"] = t.UTC().Format(time.RFC3339)
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func customersAPIHandler(p *bureau.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := p.Customers(r.Context())
		if err != nil {
			writeSourceError(w, err, "failed to list customers")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func featuresAPIHandler(p *bureau.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if vectors, ok := customerVectors(p, w, r); ok {
			writeJSON(w, http.StatusOK, vectors)
		}
	}
}

func summaryAPIHandler(p *bureau.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if vectors, ok := customerVectors(p, w, r); ok {
			writeJSON(w, http.StatusOK, p.Aggregate(vectors))
		}
	}
}

func findingsAPIHandler(p *bureau.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if vectors, ok := customerVectors(p, w, r); ok {
			writeJSON(w, http.StatusOK, p.ExtractKeyFindings(p.Aggregate(vectors), vectors, nil))
		}
	}
}

// reportAPIHandler accepts an optional behavioral features JSON body.
func reportAPIHandler(p *bureau.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		crn, ok := pathCRN(w, r)
		if !ok {
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBehaviorBodyBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		var b *behavior.Features
		if len(bytes.TrimSpace(body)) > 0 {
			if b, err = behavior.ParseBytes(body); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		rep, err := p.Report(r.Context(), crn, b)
		if err != nil {
			writeSourceError(w, err, "failed to compute report")
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func reloadAPIHandler(p *bureau.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := p.Cache().Reload(r.Context())
		if err != nil {
			writeSourceError(w, err, "failed to reload source")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"rows":      n,
			"loaded_at": p.Cache().LoadedAt().UTC().Format(time.RFC3339),
		})
	}
}

package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"nutriapp/internal/codec"
)

// maxImportSize bounds catalog uploads
const maxImportSize = 8 << 20

// Import merges an uploaded catalog in the format named by the path
func (h *CatalogHandler) Import(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	body := http.MaxBytesReader(w, r.Body, maxImportSize)

	result, err := h.svc.ImportFrom(r.Context(), format, body, "upload")
	if err != nil {
		h.writeFailure(w, fmt.Sprintf("Failed to import %s", format), err)
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}

// Export downloads the catalog in the format named by the path
func (h *CatalogHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	c, err := codec.Lookup(format)
	if err != nil {
		h.writeFailure(w, "Unsupported export format", err)
		return
	}

	// Encode fully before writing so errors can still produce a JSON error
	var buf bytes.Buffer
	if err := h.svc.ExportTo(r.Context(), c.Format(), &buf); err != nil {
		h.writeFailure(w, fmt.Sprintf("Failed to export %s", format), err)
		return
	}

	w.Header().Set("Content-Type", c.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=catalog.%s", c.Format()))
	w.Write(buf.Bytes())
}

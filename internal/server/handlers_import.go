package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/bobmcallan/budgeter/internal/models"
)

// ImportResponse wraps the import result with its human readable summary.
type ImportResponse struct {
	*models.ImportResult
	Summary string `json:"summary"`
}

// handleImport handles POST /api/investments/import. The CSV is either the
// "file" field of a multipart form or the raw request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.app.Config.Import.MaxFileBytes())

	var (
		body     io.Reader = r.Body
		fileName           = r.URL.Query().Get("filename")
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
				return
			}
			WriteError(w, http.StatusBadRequest, "Multipart field \"file\" is required")
			return
		}
		defer file.Close()
		body = file
		if fileName == "" {
			fileName = header.Filename
		}
	}
	if fileName == "" {
		fileName = "upload.csv"
	}
	fileName = filepath.Base(fileName)

	result, err := s.app.ImportService.Import(r.Context(), fileName, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeServiceError(w, s.logger, err)
		return
	}

	s.logger.Info().
		Str("file", fileName).
		Int("rows", result.RowsRead).
		Int("imported", result.Imported).
		Int("issues", len(result.Issues)).
		Msg("Import completed")

	WriteJSON(w, http.StatusOK, ImportResponse{ImportResult: result, Summary: result.Summary()})
}

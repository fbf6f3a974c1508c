package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"ladle/model"
	"ladle/storage"
)

type Importer interface {
	Import(ctx context.Context, url string) (*model.Import, error)
}

type ImportAPI struct {
	importer   Importer
	importRepo storage.ImportRepository
	logger     *slog.Logger
}

func NewImportAPI(importer Importer, importRepo storage.ImportRepository, logger *slog.Logger) *ImportAPI {
	return &ImportAPI{
		importer:   importer,
		importRepo: importRepo,
		logger:     logger,
	}
}

func (i *ImportAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	importID, _ := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodPost && importID == "":
		i.Create(w, r)
	case r.Method == http.MethodGet && importID == "":
		i.List(w, r)
	case r.Method == http.MethodGet:
		i.Get(w, r, importID)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the import api", r.Method, importID))
	}
}

func (i *ImportAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "could not parse request body", err)
		return
	}
	if req.URL == "" {
		Error(w, http.StatusBadRequest, "missing url", errors.New("the url field is required"))
		return
	}

	imp, err := i.importer.Import(r.Context(), req.URL)
	if err != nil {
		i.returnErr(w, http.StatusInternalServerError, "could not store import", err)
		return
	}
	if imp.Status == model.ImportStatusFailed {
		Error(w, http.StatusUnprocessableEntity, "Failed to parse recipe from URL", errors.New(imp.Error), imp.ID.String())
		return
	}

	i.returnJSON(w, http.StatusOK, imp)
}

func (i *ImportAPI) List(w http.ResponseWriter, r *http.Request) {
	imports, err := i.importRepo.FindAll()
	if err != nil {
		i.returnErr(w, http.StatusInternalServerError, "could not list imports", err)
		return
	}

	i.returnJSON(w, http.StatusOK, imports)
}

func (i *ImportAPI) Get(w http.ResponseWriter, r *http.Request, importID string) {
	id, err := uuid.Parse(importID)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid import id", err)
		return
	}

	imp, err := i.importRepo.FindOne(id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "not found", err)
		return
	case err != nil:
		i.returnErr(w, http.StatusInternalServerError, "could not fetch import", err)
		return
	}

	i.returnJSON(w, http.StatusOK, imp)
}

func (i *ImportAPI) returnJSON(w http.ResponseWriter, status int, body any) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		i.returnErr(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(status)
	w.Write(jsonBody)
}

func (i *ImportAPI) returnErr(w http.ResponseWriter, status int, message string, err error, details ...any) {
	i.logger.Error(message, slog.String("err", err.Error()), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}

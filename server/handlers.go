package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/reusee/symbook/engine"
	"github.com/reusee/symbook/notebooks"
)

type statusResponse struct {
	Ready         bool `json:"ready"`
	GraphicsReady bool `json:"graphicsReady"`
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Ready:         s.options.Engine.Ready(),
		GraphicsReady: s.options.Engine.GraphicsReady(),
	})
}

type executeRequest struct {
	Code       string `json:"code"`
	NotebookID string `json:"notebookId"`
	Sequence   int    `json:"sequence"`
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.options.Engine.Execute(r.Context(), req.Code, req.NotebookID, req.Sequence)
	if err != nil {
		engineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type completeRequest struct {
	Code     string `json:"code"`
	Position int    `json:"position"`
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.options.Engine.Complete(r.Context(), req.Code, req.Position)
	if err != nil {
		engineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteVariable(w http.ResponseWriter, r *http.Request) {
	resp, err := s.options.Engine.DeleteVariable(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		engineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) searchDocs(w http.ResponseWriter, r *http.Request) {
	resp, err := s.options.Engine.SearchDocs(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		engineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) documentation(w http.ResponseWriter, r *http.Request) {
	resp, err := s.options.Engine.Execute(r.Context(), "?"+chi.URLParam(r, "name"), "", 0)
	if err != nil {
		engineError(w, err)
		return
	}
	if resp.Documentation == nil {
		// not ready yet
		writeError(w, http.StatusServiceUnavailable, errors.New("engine is starting"))
		return
	}
	writeJSON(w, http.StatusOK, resp.Documentation)
}

func (s *Server) interrupt(w http.ResponseWriter, r *http.Request) {
	if err := s.options.Runner.Interrupt(); err != nil {
		engineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) notebookError(w http.ResponseWriter, err error) {
	if errors.Is(err, notebooks.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.logger.Error("notebook store", "error", err)
	writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) listNotebooks(w http.ResponseWriter, r *http.Request) {
	list, err := s.options.Store.List(r.Context())
	if err != nil {
		s.notebookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) createNotebook(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		req.Name = "Untitled"
	}
	nb, err := s.options.Store.Create(r.Context(), req.Name)
	if err != nil {
		s.notebookError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nb)
}

func (s *Server) getNotebook(w http.ResponseWriter, r *http.Request) {
	nb, err := s.options.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.notebookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nb)
}

func (s *Server) saveNotebook(w http.ResponseWriter, r *http.Request) {
	var nb notebooks.Notebook
	if err := decodeJSON(r, &nb); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	nb.ID = chi.URLParam(r, "id")
	if _, err := s.options.Store.Get(r.Context(), nb.ID); err != nil {
		s.notebookError(w, err)
		return
	}
	if err := s.options.Store.Save(r.Context(), &nb); err != nil {
		s.notebookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &nb)
}

func (s *Server) renameNotebook(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	if err := s.options.Store.Rename(r.Context(), chi.URLParam(r, "id"), req.Name); err != nil {
		s.notebookError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteNotebook(w http.ResponseWriter, r *http.Request) {
	if err := s.options.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.notebookError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportNotebook(w http.ResponseWriter, r *http.Request) {
	nb, err := s.options.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.notebookError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(nb.Name+".yaml"))
	if err := notebooks.Export(w, nb); err != nil {
		s.logger.Error("export notebook", "id", nb.ID, "error", err)
	}
}

func (s *Server) importNotebook(w http.ResponseWriter, r *http.Request) {
	nb, err := notebooks.Import(http.MaxBytesReader(w, r.Body, 32<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.options.Store.Save(r.Context(), nb); err != nil {
		s.notebookError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nb)
}

func (s *Server) runNotebook(w http.ResponseWriter, r *http.Request) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	ctx := r.Context()
	nb, err := s.options.Store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.notebookError(w, err)
		return
	}
	runErr := s.options.Runner.RunAll(ctx, nb)
	if runErr != nil && !errors.Is(runErr, engine.ErrInterrupted) {
		engineError(w, runErr)
		return
	}
	// interrupted runs keep the outputs produced so far
	if err := s.options.Store.Save(ctx, nb); err != nil {
		s.notebookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nb)
}

type runCellResponse struct {
	Cell     *notebooks.Cell  `json:"cell"`
	Response *engine.Response `json:"response"`
}

func (s *Server) runCell(w http.ResponseWriter, r *http.Request) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	ctx := r.Context()
	nb, err := s.options.Store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.notebookError(w, err)
		return
	}
	cellID := chi.URLParam(r, "cell")
	cell, ok := nb.Cell(cellID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("cell %s not found", cellID))
		return
	}
	resp, err := s.options.Runner.RunCell(ctx, nb, cell)
	if err != nil {
		engineError(w, err)
		return
	}
	if err := s.options.Store.Save(ctx, nb); err != nil {
		s.notebookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runCellResponse{
		Cell:     cell,
		Response: resp,
	})
}

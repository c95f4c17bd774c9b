package http

import (
	"fmt"
	"net/http"

	"signaldesk/internal/collection"
	"signaldesk/internal/core"
	"signaldesk/internal/services"
)

// resource serves one collection under /api/{kind}.
type resource[T any] struct {
	svc  *services.CollectionService[T]
	view func(T) any
}

// mountCollection registers the list, create, get, update, delete and
// toggle routes for svc.
func mountCollection[T any](s *Server, svc *services.CollectionService[T], view func(T) any) {
	rs := &resource[T]{svc: svc, view: view}
	base := "/api/" + svc.Kind()

	s.handle("GET "+base, rs.list)
	s.handle("POST "+base, rs.create)
	s.handle("GET "+base+"/{id}", rs.get)
	s.handle("PATCH "+base+"/{id}", rs.update)
	s.handle("DELETE "+base+"/{id}", rs.remove)
	s.handle("POST "+base+"/{id}/toggle/{field}", rs.toggle)
}

func (rs *resource[T]) notFound(id string) error {
	return fmt.Errorf("%w: %s %q", core.ErrNotFound, rs.svc.Kind(), id)
}

func (rs *resource[T]) list(w http.ResponseWriter, r *http.Request) {
	items, err := rs.svc.Filter(ParseListQuery(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = rs.view(item)
	}
	writeJSON(w, http.StatusOK, listResponse{Items: out, Count: len(out), Total: rs.svc.Len()})
}

func (rs *resource[T]) create(w http.ResponseWriter, r *http.Request) {
	var draft T
	if _, err := decodeBody(w, r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := rs.svc.Create(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := rs.svc.Collection().Schema().ID(rec)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/"+rs.svc.Kind()+"/"+id).
		Body(rs.view(rec)).
		Write(w)
}

func (rs *resource[T]) get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, ok := rs.svc.Get(id)
	if !ok {
		writeError(w, r, rs.notFound(id))
		return
	}
	writeJSON(w, http.StatusOK, rs.view(rec))
}

func (rs *resource[T]) update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, found, err := rs.svc.Update(r.Context(), id, collection.MergeJSON[T](body))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, rs.notFound(id))
		return
	}
	writeJSON(w, http.StatusOK, rs.view(rec))
}

// remove answers 204 whether or not the record existed.
func (rs *resource[T]) remove(w http.ResponseWriter, r *http.Request) {
	if _, err := rs.svc.Remove(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rs *resource[T]) toggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, found, err := rs.svc.Toggle(r.Context(), id, r.PathValue("field"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, rs.notFound(id))
		return
	}
	writeJSON(w, http.StatusOK, rs.view(rec))
}

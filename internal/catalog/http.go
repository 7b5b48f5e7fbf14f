package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniCatalog/pkg/kit"
)

const indexTemplate = "index.html"

type Server struct {
	Store    Store
	Renderer Renderer
	Log      *zap.Logger
}

type indexPage struct {
	Items  []Product
	Total  int
	Search string
}

type item struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Stock    int         `json:"stock"`
	ImageURL *string     `json:"image_url"`
}

func toItem(p Product) item {
	return item{
		ID:       p.ID,
		Name:     p.Name,
		Price:    json.Number(p.Price.String()),
		Stock:    p.Stock,
		ImageURL: p.ImageURL,
	}
}

// Routes mounts the catalog pages. write wraps the form POST routes (rate
// limiting); nil leaves them bare.
func (s *Server) Routes(write func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			s.logger().Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/", s.index)
	r.Get("/items", s.items)

	r.Group(func(wr chi.Router) {
		if write != nil {
			wr.Use(write)
		}
		wr.Post("/add-product", s.add)
		wr.Post("/delete/{product_id}", s.delete)
		wr.Post("/edit/{product_id}", s.edit)
	})

	return r
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	products, err := s.Store.List(r.Context(), search)
	if err != nil {
		s.serverError(w, r, "list products failed", err)
		return
	}

	var buf bytes.Buffer
	page := indexPage{Items: products, Total: len(products), Search: search}
	if err := s.Renderer.Render(&buf, indexTemplate, page); err != nil {
		s.serverError(w, r, "render index failed", err)
		return
	}
	kit.WriteHTML(w, http.StatusOK, &buf)
}

func (s *Server) items(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context(), "")
	if err != nil {
		s.serverError(w, r, "list products failed", err)
		return
	}

	out := make([]item, 0, len(products))
	for _, p := range products {
		out = append(out, toItem(p))
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	in, err := parseProductForm(w, r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	p, err := s.Store.Create(r.Context(), in)
	if err != nil {
		s.serverError(w, r, "create product failed", err)
		return
	}

	s.logger().Debug("product created", zap.Int64("id", p.ID))
	kit.SeeOther(w, r, "/")
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(chi.URLParam(r, "product_id"))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	deleted, err := s.Store.Delete(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "delete product failed", err, zap.Int64("id", id))
		return
	}

	s.logger().Debug("product delete", zap.Int64("id", id), zap.Bool("deleted", deleted))
	kit.SeeOther(w, r, "/")
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(chi.URLParam(r, "product_id"))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	in, err := parseProductForm(w, r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	_, found, err := s.Store.Update(r.Context(), id, in)
	if err != nil {
		s.serverError(w, r, "update product failed", err, zap.Int64("id", id))
		return
	}

	s.logger().Debug("product edit", zap.Int64("id", id), zap.Bool("found", found))
	kit.SeeOther(w, r, "/")
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		kit.WriteError(w, r, http.StatusRequestEntityTooLarge, "form too large", map[string]any{"limit": tooLarge.Limit})
		return
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		kit.WriteError(w, r, http.StatusBadRequest, "bad form", map[string]any{"field": fe.Field, "reason": fe.Reason})
		return
	}
	kit.WriteError(w, r, http.StatusBadRequest, "bad form", nil)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	s.logger().Error(msg, append(fields, zap.Error(err))...)
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Package httpserver exposes the Reflect actions over HTTP/JSON.
package httpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/TariqKichawele/Reflect/internal/convert"
	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/TariqKichawele/Reflect/internal/mood"
	"github.com/TariqKichawele/Reflect/internal/result"
	"github.com/TariqKichawele/Reflect/internal/service"
)

// Quotes serves and revalidates the daily prompt.
type Quotes interface {
	Get(ctx context.Context) string
	Invalidate()
}

// Server wires services into HTTP handlers.
type Server struct {
	journal     service.JournalService
	collections service.CollectionService
	users       service.UserService
	quotes      Quotes
	verifier    TokenVerifier
	origins     []string
	log         *zap.Logger
}

// New constructs a Server with injected services.
func New(
	journal service.JournalService,
	collections service.CollectionService,
	users service.UserService,
	quotes Quotes,
	verifier TokenVerifier,
	allowedOrigins []string,
	log *zap.Logger,
) *Server {
	return &Server{
		journal:     journal,
		collections: collections,
		users:       users,
		quotes:      quotes,
		verifier:    verifier,
		origins:     allowedOrigins,
		log:         log,
	}
}

// Routes returns the root handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recover(s.log))
	r.Use(Logging(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/quote", s.handleQuote)
		r.Get("/moods", s.handleMoods)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(s.verifier, s.log))

			r.With(RequireAuth).Post("/quote/revalidate", s.handleRevalidateQuote)
			r.Get("/moods/{mood}/image", s.handleMoodImage)
			r.Post("/users/sync", s.handleSyncUser)

			r.Get("/collections", s.handleListCollections)
			r.Post("/collections", s.handleCreateCollection)
			r.Delete("/collections/{id}", s.handleDeleteCollection)

			r.Get("/entries", s.handleListEntries)
			r.Post("/entries", s.handleCreateEntry)
			r.Get("/entries/{id}", s.handleGetEntry)
			r.Put("/entries/{id}", s.handleUpdateEntry)
			r.Delete("/entries/{id}", s.handleDeleteEntry)

			r.Get("/draft", s.handleGetDraft)
			r.Put("/draft", s.handleSaveDraft)
		})
	})
	return r
}

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, errs.Invalid("bad id %q", raw)
	}
	return id, nil
}

// --- quote & moods ---

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, convert.Quote{Quote: s.quotes.Get(r.Context())})
}

func (s *Server) handleRevalidateQuote(w http.ResponseWriter, _ *http.Request) {
	s.quotes.Invalidate()
	writeJSON(w, http.StatusOK, map[string]bool{"revalidated": true})
}

func (s *Server) handleMoods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, mood.All())
}

func (s *Server) handleMoodImage(w http.ResponseWriter, r *http.Request) {
	u, err := s.journal.MoodImage(r.Context(), chi.URLParam(r, "mood"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.Image{URL: u})
}

// --- users ---

func (s *Server) handleSyncUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Sync(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToUser(*u))
}

// --- collections ---

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	cs, err := s.collections.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToCollections(cs))
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var in convert.CollectionInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, err := s.collections.Create(r.Context(), convert.FromCollectionInput(in))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToCollection(*c))
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.collections.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.Deleted{Deleted: true})
}

// --- entries ---

// handleListEntries is tagged: it always answers 200.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	coll, err := model.ParseCollectionFilter(q.Get("collection"))
	if err != nil {
		writeJSON(w, http.StatusOK, result.Fail[[]convert.Entry](errs.Message(err)))
		return
	}
	order, err := model.ParseOrder(q.Get("order"))
	if err != nil {
		writeJSON(w, http.StatusOK, result.Fail[[]convert.Entry](errs.Message(err)))
		return
	}

	res := s.journal.ListEntries(r.Context(), model.EntryFilter{Collection: coll, Order: order})
	if !res.Success() {
		writeJSON(w, http.StatusOK, result.Fail[[]convert.Entry](res.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result.Ok(convert.ToEntryViews(res.Data())))
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var in convert.EntryInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	mi, err := convert.FromEntryInput(in)
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := s.journal.CreateEntry(r.Context(), mi)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToEntry(*e))
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := s.journal.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToEntryView(*v))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in convert.EntryInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	mi, err := convert.FromEntryInput(in)
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := s.journal.UpdateEntry(r.Context(), id, mi)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToEntry(*e))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.journal.DeleteEntry(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.Deleted{Deleted: true})
}

// --- draft (tagged) ---

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	res := s.journal.GetDraft(r.Context())
	if !res.Success() {
		writeJSON(w, http.StatusOK, result.Fail[*convert.Draft](res.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result.Ok(convert.ToDraftPtr(res.Data())))
}

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	var in convert.DraftInput
	if err := decode(w, r, &in); err != nil {
		writeJSON(w, http.StatusOK, result.Fail[convert.Draft](errs.Message(err)))
		return
	}
	res := s.journal.SaveDraft(r.Context(), convert.FromDraftInput(in))
	if !res.Success() {
		writeJSON(w, http.StatusOK, result.Fail[convert.Draft](res.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result.Ok(convert.ToDraft(res.Data())))
}

package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/auth"
	"github.com/sakif/programmer-battle/internal/serializer"
	"github.com/sakif/programmer-battle/internal/service"
)

// ProgrammerHandler exposes programmer CRUD over HTTP.
//
// The handler only speaks HTTP: it pulls the nickname out of the URL,
// hands the decoded body to the service, and turns the result or error
// into a JSON response.
type ProgrammerHandler struct {
	service *service.ProgrammerService
	logger  *slog.Logger
}

// NewProgrammerHandler creates a new ProgrammerHandler.
func NewProgrammerHandler(svc *service.ProgrammerService, logger *slog.Logger) *ProgrammerHandler {
	return &ProgrammerHandler{
		service: svc,
		logger:  logger,
	}
}

// ProgrammerURL is the canonical URL path of a programmer resource.
func ProgrammerURL(nickname string) string {
	return "/api/programmers/" + url.PathEscape(nickname)
}

// nicknameParam returns the decoded {nickname} URL parameter.
//
// chi matches on r.URL.RawPath when it is set, which happens whenever the
// path carries an escaped "/" or other reserved byte. The parameter is then
// still percent-encoded and must be unescaped here.
func nicknameParam(r *http.Request) (string, error) {
	nickname := chi.URLParam(r, "nickname")
	if r.URL.RawPath == "" {
		return nickname, nil
	}
	decoded, err := url.PathUnescape(nickname)
	if err != nil {
		return "", apperror.NotFound("programmer", "nickname", nickname)
	}
	return decoded, nil
}

// HandleCreate creates a programmer.
//
// HTTP: POST /api/programmers
// REQUEST BODY: {"nickname": "ObjectOrienter", "avatarNumber": 5, "tagLine": "a test dev!"}
// RESPONSE: 201 with the programmer and a Location header pointing at it.
func (h *ProgrammerHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	data := readPayload(r, h.logger)

	// "" when anonymous; the service falls back to the default creator.
	userID, _ := auth.UserIDFromContext(r.Context())

	programmer, err := h.service.Create(r.Context(), data, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", ProgrammerURL(programmer.Nickname))
	writeJSON(w, http.StatusCreated, serializer.Programmer(programmer))
}

// HandleShow returns one programmer.
//
// HTTP: GET /api/programmers/{nickname}
func (h *ProgrammerHandler) HandleShow(w http.ResponseWriter, r *http.Request) {
	nickname, err := nicknameParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	programmer, err := h.service.Get(r.Context(), nickname)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, serializer.Programmer(programmer))
}

// HandleList returns every programmer in insertion order.
//
// HTTP: GET /api/programmers
// RESPONSE: {"programmers": [...]}
func (h *ProgrammerHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	programmers, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, serializer.Programmers(programmers))
}

// HandleUpdate edits a programmer. The nickname in the body is ignored.
//
// HTTP: PUT   /api/programmers/{nickname}  → full replace, absent fields are cleared
// HTTP: PATCH /api/programmers/{nickname}  → partial update, absent fields are kept
func (h *ProgrammerHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	nickname, err := nicknameParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	data := readPayload(r, h.logger)
	clearMissing := r.Method != http.MethodPatch

	programmer, err := h.service.Update(r.Context(), nickname, data, clearMissing)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, serializer.Programmer(programmer))
}

// HandleDelete removes a programmer.
//
// HTTP: DELETE /api/programmers/{nickname}
// RESPONSE: 204 No Content, whether or not the programmer existed.
func (h *ProgrammerHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	nickname, err := nicknameParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.service.Delete(r.Context(), nickname); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact/entity"
)

const maxBodyBytes = 1 << 20

// Handler serves the `usuarios` collection resource. The verb selects the
// operation and an optional `id` query parameter addresses one record.
type Handler struct {
	svc     *ContactService
	logger  *zap.SugaredLogger
	timeout time.Duration
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Handler{svc: NewContactService(db, nil), logger: logger, timeout: timeout}
}

// MessageResponse is the success body of write operations.
type MessageResponse struct {
	Mensagem string `json:"mensagem"`
	ID       int64  `json:"id,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Erro string `json:"erro"`
}

func (h *Handler) Usuarios(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	switch r.Method {
	case http.MethodGet:
		h.get(ctx, w, r)
	case http.MethodPost:
		h.create(ctx, w, r)
	case http.MethodPut:
		h.replace(ctx, w, r)
	case http.MethodDelete:
		h.delete(ctx, w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		h.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Erro: "Método não permitido."})
	}
}

func (h *Handler) get(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var (
		out []entity.Contact
		err error
	)
	id, present, perr := queryID(r)
	switch {
	case perr != nil:
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Erro: "ID do usuário inválido."})
		return
	case present:
		out, err = h.svc.Get(ctx, id)
	default:
		out, err = h.svc.List(ctx)
	}
	if err != nil {
		h.logger.Errorw("list contacts failed", "id", id, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Erro: "Erro ao buscar usuários: " + err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) create(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	c, ok := h.decode(w, r, "Dados inválidos fornecidos.")
	if !ok {
		return
	}
	id, err := h.svc.Create(ctx, c)
	if err != nil {
		if errors.Is(err, ErrInvalidPayload) {
			h.logger.Debugw("invalid contact payload", "err", err)
			h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Erro: "Dados inválidos fornecidos: " + err.Error()})
			return
		}
		h.logger.Errorw("create contact failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Erro: "Erro ao criar usuário: " + err.Error()})
		return
	}
	h.logger.Infow("contact created", "id", id)
	h.writeJSON(w, http.StatusCreated, MessageResponse{Mensagem: "Usuário criado com sucesso.", ID: id})
}

func (h *Handler) replace(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id, present, err := queryID(r)
	if !present {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Erro: "ID do usuário é obrigatório para atualização."})
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Erro: "ID do usuário inválido."})
		return
	}
	c, ok := h.decode(w, r, "Dados de atualização inválidos.")
	if !ok {
		return
	}
	if err := h.svc.Replace(ctx, id, c); err != nil {
		if errors.Is(err, ErrInvalidPayload) {
			h.logger.Debugw("invalid contact payload", "id", id, "err", err)
			h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Erro: "Dados de atualização inválidos: " + err.Error()})
			return
		}
		// a missing row lands here too and is reported as a storage failure
		h.logger.Errorw("update contact failed", "id", id, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Erro: "Erro ao atualizar usuário: " + err.Error()})
		return
	}
	h.logger.Infow("contact updated", "id", id)
	h.writeJSON(w, http.StatusOK, MessageResponse{Mensagem: fmt.Sprintf("Usuário ID %d atualizado com sucesso.", id)})
}

func (h *Handler) delete(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id, present, err := queryID(r)
	if !present {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Erro: "ID do usuário é obrigatório para exclusão."})
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Erro: "ID do usuário inválido."})
		return
	}
	switch err := h.svc.Delete(ctx, id); {
	case err == nil:
		h.logger.Infow("contact deleted", "id", id)
		h.writeJSON(w, http.StatusOK, MessageResponse{Mensagem: fmt.Sprintf("Usuário ID %d excluído com sucesso.", id)})
	case errors.Is(err, ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Erro: fmt.Sprintf("Usuário com ID %d não encontrado.", id)})
	default:
		h.logger.Errorw("delete contact failed", "id", id, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Erro: "Erro ao excluir usuário: " + err.Error()})
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, msg string) (*entity.Contact, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var c entity.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		h.logger.Debugw("invalid contact payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Erro: msg})
		return nil, false
	}
	return &c, true
}

// queryID reports whether `id` was given and parses it.
func queryID(r *http.Request) (int64, bool, error) {
	q := r.URL.Query()
	if !q.Has("id") {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(q.Get("id"), 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %q", ErrInvalidID, q.Get("id"))
	}
	return id, true, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

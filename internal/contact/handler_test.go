package contact_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact/entity"
	"github.com/ovaphlow/pitchfork/service-contact-go/pkg/database"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	sqlDB, err := database.Connect(database.Config{
		Driver:   database.DriverSQLite,
		DSN:      ":memory:",
		MaxConns: 1,
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	db := sqlx.NewDb(sqlDB, database.DriverSQLite)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, contact.NewContactService(db, nil).EnsureSchema(context.Background()))
	return db
}

func newHandler(t *testing.T) (*contact.Handler, *sqlx.DB) {
	db := setupDB(t)
	return contact.NewHandler(db, zap.NewNop().Sugar(), 5*time.Second), db
}

const anaJSON = `{"nome":"Ana Silva","email":"ana@example.com","data_nascimento":"1990-06-15",
	"profissao":"Analista","telefone":"(00) 0000-0000","celular":"(11) 98765-4321",
	"check1":true,"check2":false,"check3":"s"}`

func do(h *contact.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.Usuarios(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) contact.MessageResponse {
	t.Helper()
	var m contact.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e contact.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e.Erro
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []entity.Contact {
	t.Helper()
	var out []entity.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHandler_CreateAndList(t *testing.T) {
	h, db := newHandler(t)

	w := do(h, http.MethodPost, "/usuarios", anaJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decodeMessage(t, w)
	assert.Equal(t, "Usuário criado com sucesso.", first.Mensagem)
	assert.NotZero(t, first.ID)

	w = do(h, http.MethodPost, "/usuarios", strings.Replace(anaJSON, "ana@example.com", "bia@example.com", 1))
	require.Equal(t, http.StatusCreated, w.Code)
	second := decodeMessage(t, w)

	w = do(h, http.MethodGet, "/usuarios", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, entity.Date("1990-06-15"), list[1].DataNascimento)
	assert.True(t, bool(list[1].Check1))
	assert.False(t, bool(list[1].Check2))
	assert.True(t, bool(list[1].Check3))

	var raw struct {
		Check1 string `db:"check1"`
		Check2 string `db:"check2"`
	}
	require.NoError(t, db.Get(&raw, `SELECT check1, check2 FROM usuarios WHERE id = ?`, first.ID))
	assert.Equal(t, "s", raw.Check1)
	assert.Equal(t, "n", raw.Check2)
}

func TestHandler_GetByID(t *testing.T) {
	h, _ := newHandler(t)
	id := decodeMessage(t, do(h, http.MethodPost, "/usuarios", anaJSON)).ID

	w := do(h, http.MethodGet, "/usuarios?id="+itoa(id), "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeList(t, w)
	require.Len(t, got, 1)
	assert.Equal(t, "Ana Silva", got[0].Nome)

	w = do(h, http.MethodGet, "/usuarios?id=9999", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w))

	w = do(h, http.MethodGet, "/usuarios?id=1%20OR%201=1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreateRejectsBadPayload(t *testing.T) {
	h, _ := newHandler(t)

	w := do(h, http.MethodPost, "/usuarios", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Dados inválidos fornecidos.", decodeError(t, w))

	w = do(h, http.MethodPost, "/usuarios", strings.Replace(anaJSON, "1990-06-15", "2023-02-29", 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, http.MethodPost, "/usuarios", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, http.MethodGet, "/usuarios", "")
	assert.Empty(t, decodeList(t, w))
}

func TestHandler_Replace(t *testing.T) {
	h, _ := newHandler(t)
	id := decodeMessage(t, do(h, http.MethodPost, "/usuarios", anaJSON)).ID

	w := do(h, http.MethodPut, "/usuarios", anaJSON)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ID do usuário é obrigatório para atualização.", decodeError(t, w))

	updated := strings.Replace(anaJSON, "Analista", "Gerente de Projetos", 1)
	w = do(h, http.MethodPut, "/usuarios?id="+itoa(id), updated)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Usuário ID "+itoa(id)+" atualizado com sucesso.", decodeMessage(t, w).Mensagem)

	// unchanged full replace still succeeds
	w = do(h, http.MethodPut, "/usuarios?id="+itoa(id), updated)
	assert.Equal(t, http.StatusOK, w.Code)

	got := decodeList(t, do(h, http.MethodGet, "/usuarios?id="+itoa(id), ""))
	require.Len(t, got, 1)
	assert.Equal(t, "Gerente de Projetos", got[0].Profissao)
}

func TestHandler_ReplaceMissingRowIsStorageFailure(t *testing.T) {
	h, _ := newHandler(t)

	w := do(h, http.MethodPut, "/usuarios?id=4242", anaJSON)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeError(t, w), "Erro ao atualizar usuário")
}

func TestHandler_Delete(t *testing.T) {
	h, _ := newHandler(t)
	id := decodeMessage(t, do(h, http.MethodPost, "/usuarios", anaJSON)).ID

	w := do(h, http.MethodDelete, "/usuarios", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, http.MethodDelete, "/usuarios?id="+itoa(id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Usuário ID "+itoa(id)+" excluído com sucesso.", decodeMessage(t, w).Mensagem)

	w = do(h, http.MethodDelete, "/usuarios?id="+itoa(id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Usuário com ID "+itoa(id)+" não encontrado.", decodeError(t, w))
}

func TestHandler_MethodHandling(t *testing.T) {
	h, _ := newHandler(t)

	w := do(h, http.MethodPatch, "/usuarios", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Método não permitido.", decodeError(t, w))

	w = do(h, http.MethodOptions, "/usuarios", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

// The gateway does not enforce email uniqueness; only the form does.
func TestHandler_DuplicateEmailsAcceptedWhenBypassingForm(t *testing.T) {
	h, _ := newHandler(t)

	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/usuarios", anaJSON).Code)
	dup := strings.Replace(anaJSON, "ana@example.com", "ANA@example.com", 1)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/usuarios", dup).Code)

	assert.Len(t, decodeList(t, do(h, http.MethodGet, "/usuarios", "")), 2)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

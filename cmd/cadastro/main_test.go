package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/form"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-contact-go/pkg/database"
)

func gateway(t *testing.T) string {
	t.Helper()
	sqlDB, err := database.Connect(database.Config{Driver: database.DriverSQLite, DSN: ":memory:", MaxConns: 1})
	require.NoError(t, err)
	db := sqlx.NewDb(sqlDB, database.DriverSQLite)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, contact.NewContactService(db, nil).EnsureSchema(context.Background()))

	srv := httptest.NewServer(router.RegisterRoutes(zap.NewNop().Sugar(), db, 5*time.Second))
	t.Cleanup(srv.Close)
	return srv.URL
}

func runCmd(t *testing.T, url, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), url, args, zap.NewNop().Sugar(), strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestRun_AddListEditDelete(t *testing.T) {
	url := gateway(t)

	out, err := runCmd(t, url, "", "add",
		"-nome", "Ana  Silva", "-email", "ana@example.com", "-nascimento", "01061990",
		"-profissao", "Analista", "-celular", "11987654321", "-check2")
	require.NoError(t, err)
	assert.Contains(t, out, form.MsgCreated)

	out, err = runCmd(t, url, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Silva")
	assert.Contains(t, out, "01/06/1990")
	assert.Contains(t, out, "(00) 0000-0000")
	assert.Contains(t, out, "(11) 98765-4321")
	assert.Contains(t, out, "nsn")

	out, err = runCmd(t, url, "", "edit", "-id", "1", "-profissao", "Gerente")
	require.NoError(t, err)
	assert.Contains(t, out, form.MsgUpdated)

	out, err = runCmd(t, url, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Gerente")

	out, err = runCmd(t, url, "n\n", "delete", "-id", "1")
	require.NoError(t, err)
	assert.Contains(t, out, form.MsgConfirm)
	assert.NotContains(t, out, form.MsgDeleted)

	out, err = runCmd(t, url, "", "delete", "-id", "1", "-yes")
	require.NoError(t, err)
	assert.Contains(t, out, form.MsgDeleted)

	out, err = runCmd(t, url, "", "delete", "-id", "1", "-yes")
	assert.ErrorIs(t, err, contact.ErrNotFound)
	assert.Contains(t, out, form.MsgDeleteFailed)
}

func TestRun_AddInvalidPrintsFieldErrors(t *testing.T) {
	url := gateway(t)

	out, err := runCmd(t, url, "", "add", "-nome", "Ana", "-email", "a@b", "-nascimento", "29/02/2023")
	assert.ErrorIs(t, err, form.ErrInvalid)
	assert.Contains(t, out, "nome:")
	assert.Contains(t, out, "(tooFewWords)")
	assert.Contains(t, out, "(noDotInDomain)")
	assert.Contains(t, out, "(notARealDate)")
	assert.Contains(t, out, "celular:")
	assert.NotContains(t, out, "telefone:")
}

func TestRun_DuplicateEmailRejected(t *testing.T) {
	url := gateway(t)
	args := []string{"add", "-nome", "Ana Silva", "-email", "ana@example.com", "-nascimento", "01/06/1990",
		"-profissao", "Analista", "-celular", "11987654321"}

	_, err := runCmd(t, url, "", args...)
	require.NoError(t, err)

	args[4] = "ANA@example.com"
	out, err := runCmd(t, url, "", args...)
	assert.ErrorIs(t, err, form.ErrInvalid)
	assert.Contains(t, out, "(notUnique)")
}

func TestRun_BadUsage(t *testing.T) {
	url := gateway(t)

	_, err := runCmd(t, url, "", "edit")
	assert.EqualError(t, err, "edit requires -id")
	_, err = runCmd(t, url, "", "frobnicate")
	assert.ErrorContains(t, err, "unknown command")
}

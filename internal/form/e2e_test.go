package form_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact/client"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/form"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/validate"
	"github.com/ovaphlow/pitchfork/service-contact-go/pkg/database"
)

// stack wires a controller to the real gateway over HTTP and sqlite.
func stack(t *testing.T) (*form.Controller, *client.Client) {
	t.Helper()
	sqlDB, err := database.Connect(database.Config{Driver: database.DriverSQLite, DSN: ":memory:", MaxConns: 1})
	require.NoError(t, err)
	db := sqlx.NewDb(sqlDB, database.DriverSQLite)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, contact.NewContactService(db, nil).EnsureSchema(context.Background()))

	srv := httptest.NewServer(router.RegisterRoutes(zap.NewNop().Sugar(), db, 5*time.Second))
	t.Cleanup(srv.Close)
	gw, err := client.New(srv.URL, srv.Client(), nil)
	require.NoError(t, err)

	c := form.NewController(gw, &navRecorder{}, yes, form.WithClock(clockwork.NewFakeClockAt(today)))
	t.Cleanup(c.Close)
	require.NoError(t, c.Open(context.Background(), form.Route{}))
	return c, gw
}

func TestE2E_BlankLandlineStoredAsDefault(t *testing.T) {
	c, gw := stack(t)
	ctx := context.Background()

	fillValid(c)
	require.NoError(t, c.Submit(ctx))

	list, err := gw.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "(00) 0000-0000", list[0].Telefone)
	assert.Equal(t, "Bia Souza", list[0].Nome)

	rows := c.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "01/02/1985", rows[0].DataNascimento)
}

func TestE2E_DuplicateEmailRejectedBySecondSubmission(t *testing.T) {
	c, gw := stack(t)
	ctx := context.Background()

	fillValid(c)
	require.NoError(t, c.Submit(ctx))

	fillValid(c)
	c.Input(validate.FieldEmail, "BIA@example.com")
	assert.ErrorIs(t, c.Submit(ctx), form.ErrInvalid)
	assert.Equal(t, validate.CodeNotUnique, validate.CodeOf(c.Control(validate.FieldEmail).Err))

	list, err := gw.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// requests that bypass the form are not checked
	dup := list[0]
	dup.Email = "BIA@EXAMPLE.COM"
	_, err = gw.Create(ctx, &dup)
	require.NoError(t, err)
	list, err = gw.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestE2E_DeleteMissingIsNotFound(t *testing.T) {
	c, _ := stack(t)

	err := c.Delete(context.Background(), 4242)
	assert.ErrorIs(t, err, contact.ErrNotFound)
	msg, ok := c.ListMessage()
	require.True(t, ok)
	assert.Equal(t, form.MsgDeleteFailed, msg.Text)
}

func TestE2E_EditRoundTrip(t *testing.T) {
	c, gw := stack(t)
	ctx := context.Background()

	fillValid(c)
	c.SetCheck(2, true)
	require.NoError(t, c.Submit(ctx))
	id := c.Rows()[0].ID

	require.NoError(t, c.Open(ctx, form.Route{ID: id}))
	assert.Equal(t, "01/02/1985", c.Control(validate.FieldBirthDate).Value)
	assert.True(t, c.Check(2))

	c.Input(validate.FieldOccupation, "Diretora de Arte")
	require.NoError(t, c.Submit(ctx))

	got, err := gw.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Diretora de Arte", got.Profissao)
	assert.True(t, bool(got.Check2))
}

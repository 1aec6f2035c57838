package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/smtp"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindValidation.Status())
	assert.Equal(t, http.StatusNotFound, KindNotFound.Status())
	assert.Equal(t, http.StatusUnauthorized, KindUnauthenticated.Status())
	assert.Equal(t, http.StatusForbidden, KindForbidden.Status())
	assert.Equal(t, http.StatusConflict, KindConflict.Status())
	assert.Equal(t, http.StatusTooManyRequests, KindRateLimited.Status())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.Status())
}

func TestAsAppError(t *testing.T) {
	nf := NotFound("gone", "/listings")
	wrapped := fmt.Errorf("load listing: %w", nf)

	got := AsAppError(wrapped)
	assert.Same(t, nf, got)
	assert.True(t, IsKind(wrapped, KindNotFound))

	boom := errors.New("boom")
	internal := AsAppError(boom)
	assert.Equal(t, KindInternal, internal.Kind)
	assert.ErrorIs(t, internal, boom)
}

func TestWithRedirectCopies(t *testing.T) {
	base := Forbidden("nope", "")
	moved := base.WithRedirect("/listings/1")

	assert.Equal(t, "", base.Redirect)
	assert.Equal(t, "/listings/1", moved.Redirect)
	assert.Equal(t, KindForbidden, moved.Kind)
}

type listingForm struct {
	Title string `form:"listing[title]" binding:"required"`
	Price string `form:"listing[price]" binding:"required,numeric,excludes=-"`
}

func TestValidationMessageUsesFormNames(t *testing.T) {
	UseFormFieldNames()

	err := binding.Validator.ValidateStruct(&listingForm{Price: "-3"})
	require.Error(t, err)

	msg := ValidationMessage(err)
	assert.Contains(t, msg, `"listing[title]" is required`)
	assert.Contains(t, msg, `"listing[price]" must be greater than or equal to 0`)
}

func TestValidationMessagePassesThroughOtherErrors(t *testing.T) {
	assert.Equal(t, "bad body", ValidationMessage(errors.New("bad body")))
}

func TestMailerSendWelcome(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg string

	m := NewMailer("smtp.example.com", 587, "team@example.com", "secret")
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	require.True(t, m.Enabled())
	require.NoError(t, m.SendWelcome("ana@example.com", "ana"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Hi ana,")
}

func TestMailerDisabledWithoutSender(t *testing.T) {
	assert.False(t, NewMailer("smtp.example.com", 587, "", "").Enabled())
	var m *Mailer
	assert.False(t, m.Enabled())
}

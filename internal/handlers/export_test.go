package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportChatXLSX(t *testing.T) {
	h, _, _ := newTestHandler(t)
	seedUser(t, uidA, "alice")
	seedUser(t, uidB, "bob")
	chatID, _ := mustCreateDirectChat(t, h, uidA, uidB, "for the record")

	w, c := jsonRequest(t, http.MethodPost, "/api/export", gin.H{
		"chatId": chatID,
		"userId": uidA,
		"format": "xlsx",
	})
	h.ExportChat(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment; filename=chat-"))
	assert.NotZero(t, w.Body.Len())
}

func TestExportChatPDF(t *testing.T) {
	h, _, _ := newTestHandler(t)
	seedUser(t, uidA, "alice")
	seedUser(t, uidB, "bob")
	chatID, _ := mustCreateDirectChat(t, h, uidA, uidB, "for the record")

	w, c := jsonRequest(t, http.MethodPost, "/api/export", gin.H{
		"chatId": chatID,
		"userId": uidB,
		"format": "pdf",
	})
	h.ExportChat(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestExportChatNonParticipant(t *testing.T) {
	h, _, _ := newTestHandler(t)
	seedUser(t, uidA, "alice")
	seedUser(t, uidB, "bob")
	seedUser(t, uidC, "carol")
	chatID, _ := mustCreateDirectChat(t, h, uidA, uidB, "secret")

	w, c := jsonRequest(t, http.MethodPost, "/api/export", gin.H{
		"chatId": chatID,
		"userId": uidC,
		"format": "xlsx",
	})
	h.ExportChat(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportChatUnknownFormat(t *testing.T) {
	h, _, _ := newTestHandler(t)
	seedUser(t, uidA, "alice")
	seedUser(t, uidB, "bob")
	chatID, _ := mustCreateDirectChat(t, h, uidA, uidB, "hello")

	w, c := jsonRequest(t, http.MethodPost, "/api/export", gin.H{
		"chatId": chatID,
		"userId": uidA,
		"format": "docx",
	})
	h.ExportChat(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

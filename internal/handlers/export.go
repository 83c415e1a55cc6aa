package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Yasvanth-2005/chat-backend/internal/models"
	apperrors "github.com/Yasvanth-2005/chat-backend/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

// ExportChat renders the caller's visible history of a chat as a
// downloadable spreadsheet or PDF. Purely presentational: the rows are
// exactly what ListMessages would show them, ledgers applied.
func (h *Handler) ExportChat(c *gin.Context) {
	var req struct {
		ChatID string `json:"chatId" binding:"required"`
		UserID string `json:"userId" binding:"required"`
		Format string `json:"format" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatId, userId and format required"})
		return
	}

	chat, err := h.Vis.GetChat(req.ChatID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !chat.HasParticipant(req.UserID) {
		respondError(c, apperrors.Forbidden("Not a participant of this chat"))
		return
	}

	msgs, err := h.Vis.VisibleHistory(req.ChatID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	title := chat.Name
	if title == "" {
		title = "Direct chat"
	}
	shortID := req.ChatID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	filename := fmt.Sprintf("chat-%s-%s", shortID, time.Now().Format("20060102"))

	switch req.Format {
	case "xlsx":
		buf, err := renderXLSX(title, msgs)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", filename))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())

	case "pdf":
		buf, err := renderPDF(title, msgs)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or pdf"})
	}
}

func renderXLSX(title string, msgs []models.Message) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	headers := []string{"Time", "Sender", "Type", "Message", "Attachments", "Edited"}
	for i, hdr := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, hdr)
	}

	for row, msg := range msgs {
		values := []interface{}{
			msg.CreatedAt.Format(time.RFC3339),
			msg.Sender.DisplayName,
			string(msg.Kind),
			msg.Body,
			attachmentNames(msg.Attachments),
			msg.Edited,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f.WriteToBuffer()
}

func renderPDF(title string, msgs []models.Message) (*bytes.Buffer, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, msg := range msgs {
		pdf.SetFont("Helvetica", "B", 10)
		header := fmt.Sprintf("%s - %s", msg.Sender.DisplayName, msg.CreatedAt.Format("2006-01-02 15:04"))
		if msg.Edited {
			header += " (edited)"
		}
		pdf.CellFormat(0, 6, header, "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		body := msg.Body
		if names := attachmentNames(msg.Attachments); names != "" {
			body += fmt.Sprintf(" [attachments: %s]", names)
		}
		pdf.MultiCell(0, 5, body, "", "L", false)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

func attachmentNames(blob []byte) string {
	if len(blob) == 0 {
		return ""
	}
	var atts []models.Attachment
	if err := json.Unmarshal(blob, &atts); err != nil {
		return ""
	}
	names := ""
	for i, a := range atts {
		if i > 0 {
			names += ", "
		}
		names += a.Name
	}
	return names
}

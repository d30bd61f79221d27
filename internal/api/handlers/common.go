package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/repository"
	"github.com/agrobridge/tradeapi/pkg/errors"
)

// writeError maps an error kind to its HTTP status and a stable JSON body
func writeError(c *gin.Context, err error) {
	c.JSON(errors.HTTPStatus(err), gin.H{"error": err.Error()})
}

// pageOptions reads the 1-based page / limit query parameters
func pageOptions(c *gin.Context, defaultLimit int) repository.ListOptions {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return repository.ListOptions{Page: page, Limit: limit}
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit > 0 {
		pages++
	}
	return pages
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// HistoryEntryResponse represents one history record
type HistoryEntryResponse struct {
	Status    string `json:"status"`
	UpdatedBy string `json:"updated_by"`
	UpdatedAt string `json:"updated_at"`
	Note      string `json:"note,omitempty"`
}

func historyResponse(history []domain.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, len(history))
	for i, entry := range history {
		out[i] = HistoryEntryResponse{
			Status:    entry.Status,
			UpdatedBy: entry.UpdatedBy.String(),
			UpdatedAt: formatTime(entry.UpdatedAt),
			Note:      entry.Note,
		}
	}
	return out
}

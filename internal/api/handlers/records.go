package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kitsunedns/kitsunedns/internal/api/models"
	"github.com/kitsunedns/kitsunedns/internal/database"
	"github.com/kitsunedns/kitsunedns/internal/dns"
)

// ListRecords godoc
// @Summary List persisted records
// @Description Returns the records stored in the database, optionally filtered by owner name
// @Tags records
// @Produce json
// @Param name query string false "Filter by owner name"
// @Success 200 {object} models.RecordListResponse
// @Failure 500 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /records [get]
func (h *Handler) ListRecords(c *gin.Context) {
	var (
		rows []database.Record
		err  error
	)
	if name := c.Query("name"); name != "" {
		rows, err = h.c.DB.RecordsFor(name)
	} else {
		rows, err = h.c.DB.Records()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	if rows == nil {
		rows = []database.Record{}
	}

	c.JSON(http.StatusOK, models.RecordListResponse{Records: rows, Count: len(rows)})
}

// CreateRecord godoc
// @Summary Create a record
// @Description Persists a record and adds it to the live authoritative store. An existing record with the same name, type, and rdata has its TTL updated.
// @Tags records
// @Accept json
// @Produce json
// @Param record body models.RecordCreateRequest true "Record to create"
// @Success 201 {object} database.Record
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /records [post]
func (h *Handler) CreateRecord(c *gin.Context) {
	var req models.RecordCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	rt, err := dns.RecordTypeFromString(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	class := dns.ClassIN
	if req.Class != "" {
		class, err = dns.RecordClassFromString(req.Class)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
	}

	rec, err := dns.RecordFromText(req.Name, rt, class, req.TTL, req.RData)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	row, err := h.c.DB.AddRecord(rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	// Remove first so a TTL update replaces the stored copy instead of
	// being dropped as an exact duplicate.
	h.c.Store.Remove(rec.Name, rec.Type, rec.Data)
	h.c.Store.Add(rec)

	c.JSON(http.StatusCreated, row)
}

// DeleteRecord godoc
// @Summary Delete a record
// @Description Removes a record from the database and the live authoritative store
// @Tags records
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} database.Record
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /records/{id} [delete]
func (h *Handler) DeleteRecord(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid record id"})
		return
	}

	row, err := h.c.DB.DeleteRecord(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	if rec, convErr := row.ResourceRecord(); convErr == nil {
		h.c.Store.Remove(rec.Name, rec.Type, rec.Data)
	} else {
		h.logWarn("deleted record could not be evicted from the store",
			"id", row.ID, "name", row.Name, "error", convErr)
	}

	c.JSON(http.StatusOK, row)
}

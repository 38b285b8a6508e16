package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/subledger/internal/core/domain"
	portssvc "github.com/SscSPs/subledger/internal/core/ports/services"
	"github.com/SscSPs/subledger/internal/dto"
	"github.com/SscSPs/subledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journals.
type journalHandler struct {
	journalService  portssvc.JournalSvcFacade
	reversalService portssvc.ReversalSvc
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalSvcFacade, reversalService portssvc.ReversalSvc) *journalHandler {
	return &journalHandler{
		journalService:  journalService,
		reversalService: reversalService,
	}
}

// RegisterJournalRoutes registers the journal and bulk routes on a company-scoped group.
func RegisterJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade, reversalService portssvc.ReversalSvc) {
	h := newJournalHandler(journalService, reversalService)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.createJournal)
		journals.GET("", h.listJournals)
		journals.GET("/:journalID", h.getJournal)
		journals.PUT("/:journalID", h.updateJournal)
		journals.DELETE("/:journalID", h.deleteJournal)
		journals.POST("/:journalID/restore", h.restoreJournal)
		journals.GET("/:journalID/history", h.getJournalHistory)

		journals.POST("/:journalID/submit", h.transition(domain.ActionSubmit))
		journals.POST("/:journalID/approve", h.transition(domain.ActionApprove))
		journals.POST("/:journalID/reject", h.transition(domain.ActionReject))
		journals.POST("/:journalID/post", h.transition(domain.ActionPost))
		journals.POST("/:journalID/reopen", h.transition(domain.ActionReopen))
		journals.POST("/:journalID/reverse", h.reverseJournal)
	}

	bulk := rg.Group("/bulk/journals")
	{
		bulk.POST("/transition", h.bulkTransition)
		bulk.POST("/delete", h.bulkDelete)
		bulk.POST("/restore", h.bulkRestore)
	}
}

// bindOptionalJSON binds a body that may be omitted entirely.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// createJournal godoc
// @Summary Create a draft journal
// @Description Creates a DRAFT journal with its lines and assigns the next number for its period.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journal body dto.CreateJournalRequest true "Journal header and lines"
// @Success 201 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 422 {object} map[string]string "Unbalanced or referencing an unusable account"
// @Security BearerAuth
// @Router /companies/{companyID}/journals [post]
func (h *journalHandler) createJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("company_id", companyID))

	journal, err := h.journalService.CreateJournal(c.Request.Context(), companyID, req, actor)
	if err != nil {
		respondError(c, logger, "CreateJournal", err)
		return
	}

	logger.Info("Journal created", slog.String("journal_id", journal.JournalID), slog.String("journal_number", journal.JournalNumber))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(journal))
}

// getJournal godoc
// @Summary Get a journal with its lines
// @Tags journals
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal not found"
// @Security BearerAuth
// @Router /companies/{companyID}/journals/{journalID} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, journalID := c.Param("companyID"), c.Param("journalID")

	journal, err := h.journalService.GetJournalByID(c.Request.Context(), companyID, journalID)
	if err != nil {
		respondError(c, logger.With(slog.String("journal_id", journalID)), "GetJournal", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// listJournals godoc
// @Summary List journals
// @Description Lists journal headers, newest journal date first, using token-based pagination.
// @Tags journals
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   limit query int false "Page size (1-100)" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Param   status query string false "Filter by status"
// @Param   period query string false "Filter by period (YYYY-MM)"
// @Param   branchID query string false "Filter by branch"
// @Param   includeDeleted query bool false "Include soft-deleted journals"
// @Success 200 {object} dto.ListJournalsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies/{companyID}/journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListJournals", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.journalService.ListJournals(c.Request.Context(), companyID, params)
	if err != nil {
		respondError(c, logger, "ListJournals", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateJournal godoc
// @Summary Replace a draft or rejected journal
// @Description Replaces header and lines. A rejected journal stays rejected until reopened.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journalID path string true "Journal ID"
// @Param   journal body dto.UpdateJournalRequest true "Journal header and lines"
// @Success 200 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Journal is not editable or version is stale"
// @Failure 422 {object} map[string]string "Unbalanced or referencing an unusable account"
// @Security BearerAuth
// @Router /companies/{companyID}/journals/{journalID} [put]
func (h *journalHandler) updateJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, journalID := c.Param("companyID"), c.Param("journalID")

	var req dto.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("company_id", companyID), slog.String("journal_id", journalID))

	journal, err := h.journalService.UpdateJournal(c.Request.Context(), companyID, journalID, req, actor)
	if err != nil {
		respondError(c, logger, "UpdateJournal", err)
		return
	}

	logger.Info("Journal updated", slog.Int64("version", journal.Version))
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// deleteJournal godoc
// @Summary Soft-delete a draft journal
// @Tags journals
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Journal is not a draft"
// @Security BearerAuth
// @Router /companies/{companyID}/journals/{journalID} [delete]
func (h *journalHandler) deleteJournal(c *gin.Context) {
	h.softDelete(c, "DeleteJournal", h.journalService.DeleteJournal)
}

// restoreJournal godoc
// @Summary Restore a soft-deleted journal
// @Tags journals
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Journal is not deleted"
// @Security BearerAuth
// @Router /companies/{companyID}/journals/{journalID}/restore [post]
func (h *journalHandler) restoreJournal(c *gin.Context) {
	h.softDelete(c, "RestoreJournal", h.journalService.RestoreJournal)
}

type journalStateFn func(ctx context.Context, companyID, journalID string, actor domain.Actor) (*domain.Journal, error)

func (h *journalHandler) softDelete(c *gin.Context, op string, fn journalStateFn) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, journalID := c.Param("companyID"), c.Param("journalID")

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("company_id", companyID), slog.String("journal_id", journalID))

	journal, err := fn(c.Request.Context(), companyID, journalID, actor)
	if err != nil {
		respondError(c, logger, op, err)
		return
	}

	logger.Info(op + " succeeded")
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// transition godoc
// @Summary Move a journal through the approval workflow
// @Description SUBMIT, APPROVE, REJECT (reason required), POST and REOPEN share this shape.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journalID path string true "Journal ID"
// @Param   body body dto.TransitionRequest false "Optional reason and expected version"
// @Success 200 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Reason missing"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Illegal transition or stale version"
// @Security BearerAuth
// @Router /companies/{companyID}/journals/{journalID}/submit [post]
// @Router /companies/{companyID}/journals/{journalID}/approve [post]
// @Router /companies/{companyID}/journals/{journalID}/reject [post]
// @Router /companies/{companyID}/journals/{journalID}/post [post]
// @Router /companies/{companyID}/journals/{journalID}/reopen [post]
func (h *journalHandler) transition(action domain.JournalAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		companyID, journalID := c.Param("companyID"), c.Param("journalID")

		var req dto.TransitionRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			logger.Warn("Failed to bind JSON for TransitionJournal", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}

		actor, ok := requireActor(c, logger)
		if !ok {
			return
		}
		logger = logger.With(slog.String("company_id", companyID), slog.String("journal_id", journalID), slog.String("action", string(action)))

		journal, err := h.journalService.TransitionJournal(c.Request.Context(), companyID, journalID, action, req, actor)
		if err != nil {
			respondError(c, logger, "TransitionJournal", err)
			return
		}

		logger.Info("Journal transitioned", slog.String("status", string(journal.Status)))
		c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
	}
}

// reverseJournal godoc
// @Summary Reverse a posted journal
// @Description Creates a posted reversal journal with debits and credits swapped and marks the original REVERSED.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journalID path string true "Journal ID"
// @Param   body body dto.ReverseJournalRequest true "Reason and optional reversal date"
// @Success 201 {object} dto.ReversalResponse
// @Failure 400 {object} map[string]string "Reason missing or date invalid"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Not posted or already reversed"
// @Security BearerAuth
// @Router /companies/{companyID}/journals/{journalID}/reverse [post]
func (h *journalHandler) reverseJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, journalID := c.Param("companyID"), c.Param("journalID")

	var req dto.ReverseJournalRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("company_id", companyID), slog.String("journal_id", journalID))

	original, reversal, err := h.reversalService.ReverseJournal(c.Request.Context(), companyID, journalID, req, actor)
	if err != nil {
		respondError(c, logger, "ReverseJournal", err)
		return
	}

	logger.Info("Journal reversed", slog.String("reversal_id", reversal.JournalID), slog.String("reversal_number", reversal.JournalNumber))
	c.JSON(http.StatusCreated, dto.ReversalResponse{
		Original: dto.ToJournalResponse(original),
		Reversal: dto.ToJournalResponse(reversal),
	})
}

// getJournalHistory godoc
// @Summary Get the approval trail of a journal
// @Tags journals
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journalID path string true "Journal ID"
// @Success 200 {array} dto.StatusChangeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal not found"
// @Security BearerAuth
// @Router /companies/{companyID}/journals/{journalID}/history [get]
func (h *journalHandler) getJournalHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, journalID := c.Param("companyID"), c.Param("journalID")

	changes, err := h.journalService.GetJournalHistory(c.Request.Context(), companyID, journalID)
	if err != nil {
		respondError(c, logger.With(slog.String("journal_id", journalID)), "GetJournalHistory", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatusChangeResponses(changes))
}

// bulkTransition godoc
// @Summary Apply one workflow action to many journals
// @Description Each journal is processed independently; the response reports the outcome per id in request order.
// @Tags bulk
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   body body dto.BulkTransitionRequest true "Journal ids and action"
// @Success 200 {object} dto.BulkResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies/{companyID}/bulk/journals/transition [post]
func (h *journalHandler) bulkTransition(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.BulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BulkTransition", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	resp := dto.NewBulkResponse(h.journalService.BulkTransition(c.Request.Context(), companyID, req, actor))
	logger.Info("Bulk transition completed",
		slog.String("company_id", companyID),
		slog.String("action", string(req.Action)),
		slog.Int("succeeded", resp.Succeeded),
		slog.Int("failed", resp.Failed),
	)
	c.JSON(http.StatusOK, resp)
}

// bulkDelete godoc
// @Summary Soft-delete many draft journals
// @Tags bulk
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   body body dto.BulkJournalIDsRequest true "Journal ids"
// @Success 200 {object} dto.BulkResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies/{companyID}/bulk/journals/delete [post]
func (h *journalHandler) bulkDelete(c *gin.Context) {
	h.bulkByIDs(c, "BulkDelete", h.journalService.BulkDelete)
}

// bulkRestore godoc
// @Summary Restore many soft-deleted journals
// @Tags bulk
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   body body dto.BulkJournalIDsRequest true "Journal ids"
// @Success 200 {object} dto.BulkResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies/{companyID}/bulk/journals/restore [post]
func (h *journalHandler) bulkRestore(c *gin.Context) {
	h.bulkByIDs(c, "BulkRestore", h.journalService.BulkRestore)
}

type bulkFn func(ctx context.Context, companyID string, journalIDs []string, actor domain.Actor) []dto.BulkResult

func (h *journalHandler) bulkByIDs(c *gin.Context, op string, fn bulkFn) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.BulkJournalIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for "+op, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	resp := dto.NewBulkResponse(fn(c.Request.Context(), companyID, req.JournalIDs, actor))
	logger.Info(op+" completed",
		slog.String("company_id", companyID),
		slog.Int("succeeded", resp.Succeeded),
		slog.Int("failed", resp.Failed),
	)
	c.JSON(http.StatusOK, resp)
}

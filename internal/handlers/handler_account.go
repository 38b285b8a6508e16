package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/subledger/internal/core/domain"
	portssvc "github.com/SscSPs/subledger/internal/core/ports/services"
	"github.com/SscSPs/subledger/internal/dto"
	"github.com/SscSPs/subledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(accountService portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: accountService,
	}
}

// RegisterAccountRoutes registers the account routes on a company-scoped group.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/tree", h.getAccountTree)
		accounts.GET("/:accountID", h.getAccount)
		accounts.PATCH("/:accountID", h.updateAccount)
		accounts.DELETE("/:accountID", h.deleteAccount)
		accounts.POST("/:accountID/restore", h.restoreAccount)
	}
}

// requireActor reads the authenticated actor or writes a 401.
func requireActor(c *gin.Context, logger *slog.Logger) (domain.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return actor, ok
}

// createAccount godoc
// @Summary Create a new account
// @Description Adds an account to the company's chart. Level and normal balance are derived.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Duplicate account code"
// @Failure 422 {object} map[string]string "Invalid parent account"
// @Security BearerAuth
// @Router /companies/{companyID}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("company_id", companyID), slog.String("account_code", req.AccountCode))

	account, err := h.accountService.CreateAccount(c.Request.Context(), companyID, req, actor)
	if err != nil {
		respondError(c, logger, "CreateAccount", err)
		return
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /companies/{companyID}/accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, accountID := c.Param("companyID"), c.Param("accountID")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), companyID, accountID)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", accountID)), "GetAccount", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Returns the chart flattened in tree order (parents before children, siblings by sort order then code).
// @Tags accounts
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   maxDepth query int false "Deepest level to include (0 = roots only)"
// @Param   accountType query string false "Restrict to one account type"
// @Param   includeInactive query bool false "Include inactive accounts"
// @Param   includeDeleted query bool false "Include soft-deleted accounts"
// @Success 200 {array} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies/{companyID}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.AccountTreeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), companyID, params)
	if err != nil {
		respondError(c, logger, "ListAccounts", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// getAccountTree godoc
// @Summary Get the chart of accounts as a tree
// @Description Returns the root accounts with nested children and any duplicate names among siblings.
// @Tags accounts
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   maxDepth query int false "Deepest level to include (0 = roots only)"
// @Param   accountType query string false "Restrict to one account type"
// @Param   includeInactive query bool false "Include inactive accounts"
// @Param   includeDeleted query bool false "Include soft-deleted accounts"
// @Success 200 {object} dto.AccountTreeResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies/{companyID}/accounts/tree [get]
func (h *accountHandler) getAccountTree(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.AccountTreeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetAccountTree", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	tree, err := h.accountService.GetAccountTree(c.Request.Context(), companyID, params)
	if err != nil {
		respondError(c, logger, "GetAccountTree", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountTreeResponse(tree))
}

// updateAccount godoc
// @Summary Update an account
// @Description Patches mutable fields. Moving under a new parent re-levels the whole subtree.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   accountID path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input or immutable field"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Stale version"
// @Failure 422 {object} map[string]string "Invalid parent or cycle"
// @Security BearerAuth
// @Router /companies/{companyID}/accounts/{accountID} [patch]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, accountID := c.Param("companyID"), c.Param("accountID")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("company_id", companyID), slog.String("account_id", accountID))

	account, err := h.accountService.UpdateAccount(c.Request.Context(), companyID, accountID, req, actor)
	if err != nil {
		respondError(c, logger, "UpdateAccount", err)
		return
	}

	logger.Info("Account updated", slog.Int64("version", account.Version))
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteAccount godoc
// @Summary Soft-delete an account
// @Tags accounts
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account has live children or is already deleted"
// @Security BearerAuth
// @Router /companies/{companyID}/accounts/{accountID} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	h.softDelete(c, "DeleteAccount", h.accountService.DeleteAccount)
}

// restoreAccount godoc
// @Summary Restore a soft-deleted account
// @Tags accounts
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account is not deleted"
// @Failure 422 {object} map[string]string "Parent is deleted"
// @Security BearerAuth
// @Router /companies/{companyID}/accounts/{accountID}/restore [post]
func (h *accountHandler) restoreAccount(c *gin.Context) {
	h.softDelete(c, "RestoreAccount", h.accountService.RestoreAccount)
}

type accountStateFn func(ctx context.Context, companyID, accountID string, actor domain.Actor) (*domain.Account, error)

func (h *accountHandler) softDelete(c *gin.Context, op string, fn accountStateFn) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, accountID := c.Param("companyID"), c.Param("accountID")

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("company_id", companyID), slog.String("account_id", accountID))

	account, err := fn(c.Request.Context(), companyID, accountID, actor)
	if err != nil {
		respondError(c, logger, op, err)
		return
	}

	logger.Info(op + " succeeded")
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

package services_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/SscSPs/subledger/internal/apperrors"
	"github.com/SscSPs/subledger/internal/core/domain"
	"github.com/SscSPs/subledger/internal/core/services"
	"github.com/SscSPs/subledger/internal/dto"
	"github.com/SscSPs/subledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// ledgerSuite seeds a cash header 1000 with a bank account 1001 under it and a sales account 4000.
type ledgerSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	accounts *services.AccountService
	reversal *services.ReversalService
	service  *services.JournalService

	cash, bank, sales *domain.Account
}

type JournalServiceTestSuite struct {
	ledgerSuite
}

func (suite *ledgerSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.NewStore()
	clock := newTestClock()
	authz := services.NewRoleAuthorizer(nil)

	suite.accounts = services.NewAccountService(suite.store, authz, services.WithAccountClock(clock.Now))
	suite.reversal = services.NewReversalService(suite.store, authz, services.WithReversalClock(clock.Now))
	suite.service = services.NewJournalService(suite.store, authz,
		services.WithReverser(suite.reversal),
		services.WithJournalClock(clock.Now),
		services.WithBulkConcurrency(4))

	var err error
	suite.cash, err = suite.accounts.CreateAccount(suite.ctx, companyID, headerReq("1000", "Cash", domain.Asset, nil), staff)
	suite.Require().NoError(err)
	suite.bank, err = suite.accounts.CreateAccount(suite.ctx, companyID, postableReq("1001", "Bank", domain.Asset, &suite.cash.AccountID), staff)
	suite.Require().NoError(err)
	suite.sales, err = suite.accounts.CreateAccount(suite.ctx, companyID, postableReq("4000", "Sales", domain.Revenue, nil), staff)
	suite.Require().NoError(err)
}

func (suite *ledgerSuite) saleRequest(date string, amount string) dto.CreateJournalRequest {
	amt := decimal.RequireFromString(amount)
	return dto.CreateJournalRequest{
		JournalDate:  date,
		Description:  "Cash sale",
		CurrencyCode: "USD",
		Lines: []dto.JournalLineRequest{
			{AccountID: suite.bank.AccountID, DebitAmount: amt},
			{AccountID: suite.sales.AccountID, CreditAmount: amt},
		},
	}
}

func (suite *ledgerSuite) createDraft() *domain.Journal {
	j, err := suite.service.CreateJournal(suite.ctx, companyID, suite.saleRequest("2024-03-10", "100.00"), staff)
	suite.Require().NoError(err)
	return j
}

func (suite *ledgerSuite) transition(j *domain.Journal, action domain.JournalAction, actor domain.Actor, reason ...string) *domain.Journal {
	req := dto.TransitionRequest{}
	if len(reason) > 0 {
		req.Reason = &reason[0]
	}
	out, err := suite.service.TransitionJournal(suite.ctx, companyID, j.JournalID, action, req, actor)
	suite.Require().NoError(err)
	return out
}

func (suite *ledgerSuite) posted() *domain.Journal {
	j := suite.createDraft()
	j = suite.transition(j, domain.ActionSubmit, staff)
	j = suite.transition(j, domain.ActionApprove, manager)
	return suite.transition(j, domain.ActionPost, director)
}

func (suite *JournalServiceTestSuite) TestCreateJournal_Success() {
	j := suite.createDraft()

	suite.Equal(domain.Draft, j.Status)
	suite.Equal("JV-202403-00001", j.JournalNumber)
	suite.Equal("2024-03", j.Period)
	suite.Equal(domain.General, j.JournalType)
	suite.True(decimal.NewFromInt(1).Equal(j.ExchangeRate))
	suite.True(decimal.RequireFromString("100").Equal(j.TotalDebit))
	suite.True(decimal.RequireFromString("100").Equal(j.TotalCredit))
	suite.Require().Len(j.Lines, 2)
	suite.Equal(1, j.Lines[0].LineNumber)
	suite.Equal(2, j.Lines[1].LineNumber)
	suite.Equal(j.JournalID, j.Lines[0].JournalHeaderID)

	second := suite.createDraft()
	suite.Equal("JV-202403-00002", second.JournalNumber)

	got, err := suite.service.GetJournalByID(suite.ctx, companyID, j.JournalID)
	suite.Require().NoError(err)
	suite.Len(got.Lines, 2)
}

func (suite *JournalServiceTestSuite) TestCreateJournal_BranchesNumberIndependently() {
	company := suite.createDraft()

	north := suite.saleRequest("2024-03-11", "50.00")
	north.BranchID = strPtr("north")
	first, err := suite.service.CreateJournal(suite.ctx, companyID, north, staff)
	suite.Require().NoError(err)
	second, err := suite.service.CreateJournal(suite.ctx, companyID, north, staff)
	suite.Require().NoError(err)

	south := suite.saleRequest("2024-03-12", "50.00")
	south.BranchID = strPtr("south")
	other, err := suite.service.CreateJournal(suite.ctx, companyID, south, staff)
	suite.Require().NoError(err)

	suite.Equal("JV-202403-00001", company.JournalNumber)
	suite.Equal("JV-north-202403-00001", first.JournalNumber)
	suite.Equal("JV-north-202403-00002", second.JournalNumber)
	suite.Equal("JV-south-202403-00001", other.JournalNumber)
	suite.Equal("JV-202403-00002", suite.createDraft().JournalNumber)
}

func (suite *JournalServiceTestSuite) TestCreateJournal_Rejections() {
	unbalanced := suite.saleRequest("2024-03-10", "100.00")
	unbalanced.Lines[1].CreditAmount = decimal.RequireFromString("90.00")

	oneLine := suite.saleRequest("2024-03-10", "100.00")
	oneLine.Lines = oneLine.Lines[:1]

	bothSides := suite.saleRequest("2024-03-10", "100.00")
	bothSides.Lines[0].CreditAmount = decimal.RequireFromString("1")

	zero := suite.saleRequest("2024-03-10", "0")

	headerLine := suite.saleRequest("2024-03-10", "100.00")
	headerLine.Lines[0].AccountID = suite.cash.AccountID

	unknown := suite.saleRequest("2024-03-10", "100.00")
	unknown.Lines[0].AccountID = "missing"

	reversalType := suite.saleRequest("2024-03-10", "100.00")
	reversalType.JournalType = domain.ReversalJournal

	badDate := suite.saleRequest("10/03/2024", "100.00")

	tests := []struct {
		name string
		req  dto.CreateJournalRequest
		want error
	}{
		{"unbalanced", unbalanced, apperrors.ErrBalance},
		{"single line", oneLine, apperrors.ErrValidation},
		{"debit and credit on one line", bothSides, apperrors.ErrValidation},
		{"zero amounts", zero, apperrors.ErrValidation},
		{"header account", headerLine, apperrors.ErrReferential},
		{"unknown account", unknown, apperrors.ErrReferential},
		{"reversal type reserved", reversalType, apperrors.ErrValidation},
		{"bad date", badDate, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.CreateJournal(suite.ctx, companyID, tt.req, staff)
			suite.ErrorIs(err, tt.want)
		})
	}
}

func (suite *JournalServiceTestSuite) TestCreateJournal_WithinTolerance() {
	req := suite.saleRequest("2024-03-10", "100.00")
	req.Lines[1].CreditAmount = decimal.RequireFromString("99.995")
	_, err := suite.service.CreateJournal(suite.ctx, companyID, req, staff)
	suite.NoError(err)
}

func (suite *JournalServiceTestSuite) TestHappyPath_StampsEveryStep() {
	j := suite.createDraft()

	j = suite.transition(j, domain.ActionSubmit, staff)
	suite.Equal(domain.Submitted, j.Status)
	suite.Equal(staff.UserID, *j.SubmittedBy)

	j = suite.transition(j, domain.ActionApprove, manager)
	suite.Equal(domain.Approved, j.Status)
	suite.Equal(manager.UserID, *j.ApprovedBy)

	j = suite.transition(j, domain.ActionPost, director)
	suite.Equal(domain.Posted, j.Status)
	suite.Equal(director.UserID, *j.PostedBy)
	suite.NotNil(j.PostedAt)

	history, err := suite.service.GetJournalHistory(suite.ctx, companyID, j.JournalID)
	suite.Require().NoError(err)
	suite.Require().Len(history, 3)
	suite.Equal(domain.ActionSubmit, history[0].Action)
	suite.Equal(domain.Draft, history[0].FromStatus)
	suite.Equal(domain.Posted, history[2].ToStatus)
}

func (suite *JournalServiceTestSuite) TestTransition_IllegalMoves() {
	j := suite.createDraft()

	_, err := suite.service.TransitionJournal(suite.ctx, companyID, j.JournalID, domain.ActionPost, dto.TransitionRequest{}, director)
	suite.ErrorIs(err, apperrors.ErrStateConflict, "cannot post a draft")

	_, err = suite.service.TransitionJournal(suite.ctx, companyID, j.JournalID, domain.ActionApprove, dto.TransitionRequest{}, manager)
	suite.ErrorIs(err, apperrors.ErrStateConflict, "cannot approve a draft")

	_, err = suite.service.TransitionJournal(suite.ctx, companyID, j.JournalID, domain.JournalAction("ARCHIVE"), dto.TransitionRequest{}, director)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestTransition_RoleGates() {
	j := suite.createDraft()
	j = suite.transition(j, domain.ActionSubmit, staff)

	_, err := suite.service.TransitionJournal(suite.ctx, companyID, j.JournalID, domain.ActionApprove, dto.TransitionRequest{}, staff)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	j = suite.transition(j, domain.ActionApprove, manager)
	_, err = suite.service.TransitionJournal(suite.ctx, companyID, j.JournalID, domain.ActionPost, dto.TransitionRequest{}, manager)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *JournalServiceTestSuite) TestRejectAndReopen() {
	j := suite.createDraft()
	j = suite.transition(j, domain.ActionSubmit, staff)

	_, err := suite.service.TransitionJournal(suite.ctx, companyID, j.JournalID, domain.ActionReject, dto.TransitionRequest{Reason: strPtr("  ")}, manager)
	suite.ErrorIs(err, apperrors.ErrReasonRequired)

	j = suite.transition(j, domain.ActionReject, manager, "wrong account")
	suite.Equal(domain.Rejected, j.Status)
	suite.Equal("wrong account", *j.RejectionReason)

	// a rejected journal can be corrected in place and stays rejected
	update := dto.UpdateJournalRequest{CreateJournalRequest: suite.saleRequest("2024-03-11", "120.00")}
	edited, err := suite.service.UpdateJournal(suite.ctx, companyID, j.JournalID, update, staff)
	suite.Require().NoError(err)
	suite.Equal(domain.Rejected, edited.Status)
	suite.True(decimal.RequireFromString("120").Equal(edited.TotalDebit))
	suite.Equal(j.JournalNumber, edited.JournalNumber, "same period keeps the number")

	reopened := suite.transition(edited, domain.ActionReopen, staff)
	suite.Equal(domain.Draft, reopened.Status)
}

func (suite *JournalServiceTestSuite) TestUpdateJournal() {
	j := suite.createDraft()

	update := dto.UpdateJournalRequest{CreateJournalRequest: suite.saleRequest("2024-04-02", "50.00"), Version: int64Ptr(j.Version)}
	edited, err := suite.service.UpdateJournal(suite.ctx, companyID, j.JournalID, update, staff)
	suite.Require().NoError(err)
	suite.Equal("2024-04", edited.Period)
	suite.Equal("JV-202404-00001", edited.JournalNumber, "a new period draws a new number")
	suite.Equal(j.Version+1, edited.Version)

	_, err = suite.service.UpdateJournal(suite.ctx, companyID, j.JournalID, update, staff)
	suite.ErrorIs(err, apperrors.ErrStateConflict, "stale version")

	submitted := suite.transition(edited, domain.ActionSubmit, staff)
	update.Version = nil
	_, err = suite.service.UpdateJournal(suite.ctx, companyID, submitted.JournalID, update, staff)
	suite.ErrorIs(err, apperrors.ErrStateConflict, "submitted journals are frozen")
}

func (suite *JournalServiceTestSuite) TestSubmit_RevalidatesAccounts() {
	j := suite.createDraft()
	_, err := suite.accounts.UpdateAccount(suite.ctx, companyID, suite.sales.AccountID, dto.UpdateAccountRequest{IsActive: boolPtr(false)}, staff)
	suite.Require().NoError(err)

	_, err = suite.service.TransitionJournal(suite.ctx, companyID, j.JournalID, domain.ActionSubmit, dto.TransitionRequest{}, staff)
	suite.ErrorIs(err, apperrors.ErrReferential)
}

func (suite *JournalServiceTestSuite) TestConcurrentApproveReject_OneWins() {
	j := suite.createDraft()
	j = suite.transition(j, domain.ActionSubmit, staff)
	version := j.Version

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, action := range []domain.JournalAction{domain.ActionApprove, domain.ActionReject} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = suite.service.TransitionJournal(suite.ctx, companyID, j.JournalID, action,
				dto.TransitionRequest{Reason: strPtr("race"), Version: &version}, manager)
		}()
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			suite.ErrorIs(err, apperrors.ErrStateConflict)
			failures++
		}
	}
	suite.Equal(1, failures)
}

func (suite *JournalServiceTestSuite) TestDeleteAndRestore() {
	j := suite.createDraft()

	deleted, err := suite.service.DeleteJournal(suite.ctx, companyID, j.JournalID, staff)
	suite.Require().NoError(err)
	suite.NotNil(deleted.DeletedAt)

	_, err = suite.service.TransitionJournal(suite.ctx, companyID, j.JournalID, domain.ActionSubmit, dto.TransitionRequest{}, staff)
	suite.ErrorIs(err, apperrors.ErrStateConflict)

	list, err := suite.service.ListJournals(suite.ctx, companyID, dto.ListJournalsParams{Limit: 10})
	suite.Require().NoError(err)
	suite.Empty(list.Journals)

	restored, err := suite.service.RestoreJournal(suite.ctx, companyID, j.JournalID, staff)
	suite.Require().NoError(err)
	suite.Nil(restored.DeletedAt)

	posted := suite.posted()
	_, err = suite.service.DeleteJournal(suite.ctx, companyID, posted.JournalID, staff)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
}

func (suite *JournalServiceTestSuite) TestListJournals_Pagination() {
	for _, date := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		_, err := suite.service.CreateJournal(suite.ctx, companyID, suite.saleRequest(date, "10"), staff)
		suite.Require().NoError(err)
	}

	first, err := suite.service.ListJournals(suite.ctx, companyID, dto.ListJournalsParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(first.Journals, 2)
	suite.Require().NotNil(first.NextToken)
	suite.Equal("2024-03-03", first.Journals[0].JournalDate.Format(dto.DateLayout))

	second, err := suite.service.ListJournals(suite.ctx, companyID, dto.ListJournalsParams{Limit: 2, NextToken: first.NextToken})
	suite.Require().NoError(err)
	suite.Require().Len(second.Journals, 1)
	suite.Nil(second.NextToken)
	suite.Equal("2024-03-01", second.Journals[0].JournalDate.Format(dto.DateLayout))

	_, err = suite.service.ListJournals(suite.ctx, companyID, dto.ListJournalsParams{Limit: 2, NextToken: strPtr("%%%")})
	suite.ErrorIs(err, apperrors.ErrValidation)

	drafts, err := suite.service.ListJournals(suite.ctx, companyID, dto.ListJournalsParams{Limit: 10, Status: string(domain.Posted)})
	suite.Require().NoError(err)
	suite.Empty(drafts.Journals)
}

func (suite *JournalServiceTestSuite) TestBulkTransition_ReportsPerItem() {
	a := suite.createDraft()
	b := suite.createDraft()
	c := suite.createDraft()
	suite.transition(c, domain.ActionSubmit, staff)

	results := suite.service.BulkTransition(suite.ctx, companyID, dto.BulkTransitionRequest{
		JournalIDs: []string{a.JournalID, "missing", b.JournalID, c.JournalID},
		Action:     domain.ActionSubmit,
	}, staff)

	suite.Require().Len(results, 4)
	suite.True(results[0].Success)
	suite.Equal(domain.Submitted, results[0].Status)
	suite.Zero(results[0].Code)
	suite.False(results[1].Success)
	suite.NotEmpty(results[1].Error)
	suite.Equal(http.StatusNotFound, results[1].Code)
	suite.True(results[2].Success)
	suite.False(results[3].Success, "already submitted")
	suite.Equal(http.StatusConflict, results[3].Code)

	resp := dto.NewBulkResponse(results)
	suite.Equal(2, resp.Succeeded)
	suite.Equal(2, resp.Failed)
}

func (suite *JournalServiceTestSuite) TestBulkTransition_SeparatesForbiddenFromConflict() {
	submitted := suite.transition(suite.createDraft(), domain.ActionSubmit, staff)
	draft := suite.createDraft()

	results := suite.service.BulkTransition(suite.ctx, companyID, dto.BulkTransitionRequest{
		JournalIDs: []string{submitted.JournalID, draft.JournalID},
		Action:     domain.ActionApprove,
	}, staff)
	suite.Require().Len(results, 2)
	suite.Equal(http.StatusForbidden, results[0].Code)
	suite.Equal(http.StatusForbidden, results[1].Code, "authorization is checked before state")

	results = suite.service.BulkTransition(suite.ctx, companyID, dto.BulkTransitionRequest{
		JournalIDs: []string{submitted.JournalID, draft.JournalID},
		Action:     domain.ActionApprove,
	}, manager)
	suite.True(results[0].Success)
	suite.Equal(http.StatusConflict, results[1].Code)
}

func (suite *JournalServiceTestSuite) TestBulkDeleteAndRestore() {
	a := suite.createDraft()
	b := suite.createDraft()

	deleted := suite.service.BulkDelete(suite.ctx, companyID, []string{a.JournalID, b.JournalID}, staff)
	suite.True(deleted[0].Success)
	suite.True(deleted[1].Success)

	restored := suite.service.BulkRestore(suite.ctx, companyID, []string{a.JournalID, b.JournalID, a.JournalID}, staff)
	suite.True(restored[1].Success)
	suite.NotEqual(restored[0].Success, restored[2].Success, "only one restore of the same journal succeeds")
	suite.Equal(a.JournalID, restored[2].JournalID)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

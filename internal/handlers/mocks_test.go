package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/SscSPs/subledger/internal/core/domain"
	portssvc "github.com/SscSPs/subledger/internal/core/ports/services"
	"github.com/SscSPs/subledger/internal/dto"
	"github.com/SscSPs/subledger/internal/handlers"
	"github.com/SscSPs/subledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	testSecret = "test-secret-key-that-is-long-enough"
	testIssuer = "subledger-test"
	companyID  = "company-1"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, companyID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, companyID string, params dto.AccountTreeParams) ([]domain.Account, error) {
	args := m.Called(ctx, companyID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountTree(ctx context.Context, companyID string, params dto.AccountTreeParams) (*domain.AccountTree, error) {
	args := m.Called(ctx, companyID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountTree), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, actor domain.Actor) (*domain.Account, error) {
	args := m.Called(ctx, companyID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, actor domain.Actor) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, companyID string, accountID string, actor domain.Actor) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) RestoreAccount(ctx context.Context, companyID string, accountID string, actor domain.Actor) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) journal(args mock.Arguments) (*domain.Journal, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) GetJournalByID(ctx context.Context, companyID string, journalID string) (*domain.Journal, error) {
	return m.journal(m.Called(ctx, companyID, journalID))
}
func (m *MockJournalService) ListJournals(ctx context.Context, companyID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	args := m.Called(ctx, companyID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalsResponse), args.Error(1)
}
func (m *MockJournalService) GetJournalHistory(ctx context.Context, companyID string, journalID string) ([]domain.JournalStatusChange, error) {
	args := m.Called(ctx, companyID, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalStatusChange), args.Error(1)
}
func (m *MockJournalService) CreateJournal(ctx context.Context, companyID string, req dto.CreateJournalRequest, actor domain.Actor) (*domain.Journal, error) {
	return m.journal(m.Called(ctx, companyID, req, actor))
}
func (m *MockJournalService) UpdateJournal(ctx context.Context, companyID string, journalID string, req dto.UpdateJournalRequest, actor domain.Actor) (*domain.Journal, error) {
	return m.journal(m.Called(ctx, companyID, journalID, req, actor))
}
func (m *MockJournalService) DeleteJournal(ctx context.Context, companyID string, journalID string, actor domain.Actor) (*domain.Journal, error) {
	return m.journal(m.Called(ctx, companyID, journalID, actor))
}
func (m *MockJournalService) RestoreJournal(ctx context.Context, companyID string, journalID string, actor domain.Actor) (*domain.Journal, error) {
	return m.journal(m.Called(ctx, companyID, journalID, actor))
}
func (m *MockJournalService) TransitionJournal(ctx context.Context, companyID string, journalID string, action domain.JournalAction, req dto.TransitionRequest, actor domain.Actor) (*domain.Journal, error) {
	return m.journal(m.Called(ctx, companyID, journalID, action, req, actor))
}
func (m *MockJournalService) BulkTransition(ctx context.Context, companyID string, req dto.BulkTransitionRequest, actor domain.Actor) []dto.BulkResult {
	return m.Called(ctx, companyID, req, actor).Get(0).([]dto.BulkResult)
}
func (m *MockJournalService) BulkDelete(ctx context.Context, companyID string, journalIDs []string, actor domain.Actor) []dto.BulkResult {
	return m.Called(ctx, companyID, journalIDs, actor).Get(0).([]dto.BulkResult)
}
func (m *MockJournalService) BulkRestore(ctx context.Context, companyID string, journalIDs []string, actor domain.Actor) []dto.BulkResult {
	return m.Called(ctx, companyID, journalIDs, actor).Get(0).([]dto.BulkResult)
}

// Ensure mock implements the interface
var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

// --- Mock ReversalService ---
type MockReversalService struct {
	mock.Mock
}

func (m *MockReversalService) ReverseJournal(ctx context.Context, companyID string, journalID string, req dto.ReverseJournalRequest, actor domain.Actor) (*domain.Journal, *domain.Journal, error) {
	args := m.Called(ctx, companyID, journalID, req, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Journal), args.Get(1).(*domain.Journal), args.Error(2)
}

var _ portssvc.ReversalSvc = (*MockReversalService)(nil)

// handlerSuite wires the real auth middleware and routes in front of mocked services.
type handlerSuite struct {
	suite.Suite
	router       *gin.Engine
	accounts     *MockAccountService
	journals     *MockJournalService
	reversals    *MockReversalService
	defaultActor domain.Actor
}

func (suite *handlerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(dto.RegisterValidators())
}

func (suite *handlerSuite) SetupTest() {
	suite.router = gin.New()
	suite.accounts = new(MockAccountService)
	suite.journals = new(MockJournalService)
	suite.reversals = new(MockReversalService)
	suite.defaultActor = domain.Actor{UserID: "user-1", Role: domain.RoleManager}

	company := suite.router.Group("/api/v1/companies/:companyID", middleware.AuthMiddleware(testSecret, testIssuer))
	handlers.RegisterAccountRoutes(company, suite.accounts)
	handlers.RegisterJournalRoutes(company, suite.journals, suite.reversals)
}

func (suite *handlerSuite) TearDownTest() {
	suite.accounts.AssertExpectations(suite.T())
	suite.journals.AssertExpectations(suite.T())
	suite.reversals.AssertExpectations(suite.T())
}

// generateTestToken creates a signed JWT for actor.
func (suite *handlerSuite) generateTestToken(actor domain.Actor) string {
	claims := middleware.Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   actor.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	suite.Require().NoError(err)
	return signed
}

// do serves a request as the default actor. A nil body sends no payload; a string is sent verbatim.
func (suite *handlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	return suite.doAs(suite.defaultActor, method, path, body)
}

func (suite *handlerSuite) doAs(actor domain.Actor, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		suite.Require().NoError(err)
	}

	req, _ := http.NewRequest(method, "/api/v1/companies/"+companyID+path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if actor.UserID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(actor))
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *handlerSuite) decode(w *httptest.ResponseRecorder, out any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func strPtr(s string) *string { return &s }

package services_test

import (
	"sync"
	"time"

	"github.com/SscSPs/subledger/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

const companyID = "company-1"

var (
	staff    = domain.Actor{UserID: "user-staff", Role: domain.RoleStaff}
	manager  = domain.Actor{UserID: "user-manager", Role: domain.RoleManager}
	director = domain.Actor{UserID: "user-director", Role: domain.RoleDirector}
)

// MockAuthorizer is a mock type for the Authorizer interface
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Can(actor domain.Actor, module domain.Module, action domain.Action) bool {
	args := m.Called(actor, module, action)
	return args.Bool(0)
}

// testClock hands out strictly increasing instants so ordering by created_at is stable.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func int64Ptr(i int64) *int64 { return &i }

func boolPtr(b bool) *bool { return &b }

package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/subledger/internal/core/domain"
	"github.com/SscSPs/subledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
)

const testSecret = "test-secret-key-that-is-long-enough"

type AuthMiddlewareTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (suite *AuthMiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.router.Use(middleware.AuthMiddleware(testSecret, "subledger-test"))
	suite.router.GET("/whoami", func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, actor)
	})
}

func (suite *AuthMiddlewareTestSuite) token(claims middleware.Claims, secret string) string {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	suite.Require().NoError(err)
	return signed
}

func (suite *AuthMiddlewareTestSuite) claims(subject, role string, expiresIn time.Duration) middleware.Claims {
	return middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "subledger-test",
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func (suite *AuthMiddlewareTestSuite) do(authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AuthMiddlewareTestSuite) TestValidTokenSetsActor() {
	w := suite.do("Bearer " + suite.token(suite.claims("user-1", "Manager", time.Hour), testSecret))
	suite.Equal(http.StatusOK, w.Code)

	var actor domain.Actor
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &actor))
	suite.Equal("user-1", actor.UserID)
	suite.Equal(domain.RoleManager, actor.Role)
}

func (suite *AuthMiddlewareTestSuite) TestMissingHeader() {
	suite.Equal(http.StatusUnauthorized, suite.do("").Code)
}

func (suite *AuthMiddlewareTestSuite) TestMalformedHeader() {
	suite.Equal(http.StatusUnauthorized, suite.do("Token abc").Code)
}

func (suite *AuthMiddlewareTestSuite) TestExpiredToken() {
	w := suite.do("Bearer " + suite.token(suite.claims("user-1", "staff", -time.Minute), testSecret))
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "expired")
}

func (suite *AuthMiddlewareTestSuite) TestWrongSecret() {
	w := suite.do("Bearer " + suite.token(suite.claims("user-1", "staff", time.Hour), "another-secret"))
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AuthMiddlewareTestSuite) TestWrongIssuer() {
	c := suite.claims("user-1", "staff", time.Hour)
	c.Issuer = "someone-else"
	suite.Equal(http.StatusUnauthorized, suite.do("Bearer "+suite.token(c, testSecret)).Code)
}

func (suite *AuthMiddlewareTestSuite) TestMissingSubject() {
	w := suite.do("Bearer " + suite.token(suite.claims("", "staff", time.Hour), testSecret))
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AuthMiddlewareTestSuite) TestUnknownRole() {
	w := suite.do("Bearer " + suite.token(suite.claims("user-1", "admin", time.Hour), testSecret))
	suite.Equal(http.StatusForbidden, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusdesk/faculty-results-api/internal/models"
	"github.com/campusdesk/faculty-results-api/internal/service"
)

type singleFacultyRepo struct {
	faculty *models.Faculty
}

func (r *singleFacultyRepo) FindByEmail(ctx context.Context, email string) (*models.Faculty, error) {
	if r.faculty != nil && r.faculty.Email == email {
		return r.faculty, nil
	}
	return nil, sql.ErrNoRows
}

func (r *singleFacultyRepo) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	if r.faculty != nil && r.faculty.ID == id {
		return r.faculty, nil
	}
	return nil, sql.ErrNoRows
}

func jwtFixture(t *testing.T) (*service.AuthService, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &singleFacultyRepo{faculty: &models.Faculty{
		ID:           "f-1",
		Email:        "prof@example.edu",
		PasswordHash: string(hash),
		DepartmentID: "dept-1",
		Active:       true,
	}}
	svc := service.NewAuthService(repo, nil, zap.NewNop(), service.AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "faculty-results-api",
	})

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "prof@example.edu",
		Password: "secret123",
	})
	require.NoError(t, err)
	return svc, res.AccessToken
}

func runJWT(svc *service.AuthService, req *http.Request) (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	JWT(svc)(c)
	return w, c
}

func TestJWTAcceptsBearerHeader(t *testing.T) {
	svc, token := jwtFixture(t)

	req, _ := http.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w, c := runJWT(svc, req)

	require.Equal(t, http.StatusOK, w.Code)
	value, exists := c.Get(ContextUserKey)
	require.True(t, exists)
	claims, ok := value.(*models.JWTClaims)
	require.True(t, ok)
	assert.Equal(t, "f-1", claims.FacultyID)
}

func TestJWTAcceptsQueryToken(t *testing.T) {
	svc, token := jwtFixture(t)

	req, _ := http.NewRequest(http.MethodGet, "/results/export?token="+token, nil)
	w, c := runJWT(svc, req)

	require.Equal(t, http.StatusOK, w.Code)
	_, exists := c.Get(ContextUserKey)
	assert.True(t, exists)
}

func TestJWTRejectsMissingToken(t *testing.T) {
	svc, _ := jwtFixture(t)

	req, _ := http.NewRequest(http.MethodGet, "/students", nil)
	w, c := runJWT(svc, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	svc, token := jwtFixture(t)

	req, _ := http.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Token "+token)
	w, _ := runJWT(svc, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsGarbageToken(t *testing.T) {
	svc, _ := jwtFixture(t)

	req, _ := http.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w, _ := runJWT(svc, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

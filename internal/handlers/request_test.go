// internal/handlers/request_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campolink/campolink-backend/internal/models"
	"github.com/campolink/campolink-backend/internal/repository"
	"github.com/campolink/campolink-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type requestRouteFixture struct {
	store    *repository.MemoryStore
	service  *services.RequestService
	admin    models.User
	founder  models.User
	producer models.User
	coop     models.Cooperative
	request  *models.CooperativeRequest
}

func newRequestRouteFixture(t *testing.T) *requestRouteFixture {
	t.Helper()
	store := repository.NewMemoryStore()

	f := &requestRouteFixture{store: store}
	f.admin = store.AddUser(models.User{
		Username: "admin",
		UserType: models.UserTypeAdmin,
		Status:   models.UserStatusActive,
	})
	f.founder = store.AddUser(models.User{
		Username: "jorge",
		UserType: models.UserTypeCooperativa,
		Status:   models.UserStatusActive,
	})
	f.producer = store.AddUser(models.User{
		Username: "maria",
		UserType: models.UserTypeProductor,
		Status:   models.UserStatusActive,
	})
	f.coop = store.AddCooperative(models.Cooperative{
		Name:           "Café de Altura Orizaba",
		Status:         models.CooperativeStatusActive,
		SeekingMembers: true,
		MemberCount:    9,
		FounderID:      f.founder.ID,
	})

	f.service = services.NewRequestService(store, nil)
	request, err := f.service.SubmitJoin(f.producer.ID, &services.SubmitJoinRequest{
		CooperativeID: f.coop.ID,
		Motivation:    "Quiero vender mi café a través de la cooperativa",
	})
	require.NoError(t, err)
	f.request = request
	return f
}

// router serves the request routes as the given user.
func (f *requestRouteFixture) router(user models.User) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", user.ID.String())
		c.Set("user_type", string(user.UserType))
		c.Next()
	})

	h := NewRequestHandler(f.service)
	r.GET("/requests/:id", h.GetRequest)
	r.PUT("/requests/:id/approve", h.Approve)
	return r
}

func TestApproveAcceptsEmptyBody(t *testing.T) {
	f := newRequestRouteFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/requests/"+f.request.ID.String()+"/approve", nil)
	f.router(f.admin).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	resolved, err := f.store.Requests().GetByID(f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, resolved.Status)
	assert.Empty(t, resolved.ReviewNotes)
}

func TestApproveRejectsMalformedBody(t *testing.T) {
	f := newRequestRouteFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/requests/"+f.request.ID.String()+"/approve",
		strings.NewReader("{not json"))
	f.router(f.admin).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	current, err := f.store.Requests().GetByID(f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, current.Status)
}

func TestGetRequestVisibleToTargetFounder(t *testing.T) {
	f := newRequestRouteFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/requests/"+f.request.ID.String(), nil)
	f.router(f.founder).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetRequestHiddenFromUnrelatedUser(t *testing.T) {
	f := newRequestRouteFixture(t)
	stranger := f.store.AddUser(models.User{
		Username: "pedro",
		UserType: models.UserTypeProductor,
		Status:   models.UserStatusActive,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/requests/"+f.request.ID.String(), nil)
	f.router(stranger).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

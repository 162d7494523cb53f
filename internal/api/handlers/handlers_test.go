package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jobhive/jobhive/internal/api/handlers"
	"github.com/jobhive/jobhive/internal/api/middleware"
	"github.com/jobhive/jobhive/internal/api/routes"
	"github.com/jobhive/jobhive/internal/models"
	"github.com/jobhive/jobhive/internal/services"
	"github.com/jobhive/jobhive/internal/utils"
)

const testSecret = "test-secret"

// -------- test fakes --------

type fakeJobService struct {
	services.JobService

	createIn  services.CreateJobInput
	createOut *models.Job
	createErr error

	listOut []models.JobWithCreator

	searchTags, searchLocation, searchTitle string

	applyJobID, applySubject string
	applyOut                 *models.Job
	applyErr                 error

	deleteErr error
}

func (f *fakeJobService) Create(ctx context.Context, subjectID string, in services.CreateJobInput) (*models.Job, error) {
	f.createIn = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeJobService) List(ctx context.Context) ([]models.JobWithCreator, error) {
	return f.listOut, nil
}

func (f *fakeJobService) Search(ctx context.Context, tags, location, title string) ([]models.JobWithCreator, error) {
	f.searchTags, f.searchLocation, f.searchTitle = tags, location, title
	return f.listOut, nil
}

func (f *fakeJobService) Apply(ctx context.Context, jobID, subjectID string) (*models.Job, error) {
	f.applyJobID, f.applySubject = jobID, subjectID
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	return f.applyOut, nil
}

func (f *fakeJobService) GetByID(ctx context.Context, jobID string) (*models.JobWithCreator, error) {
	return nil, utils.E(utils.CodeNotFound, "JobService.GetByID", "Job not found", nil)
}

func (f *fakeJobService) Delete(ctx context.Context, jobID, subjectID string) error {
	return f.deleteErr
}

type fakeUserService struct {
	services.UserService

	ensured []models.Identity

	profileOut *models.User
	profileErr error
}

func (f *fakeUserService) EnsureUser(ctx context.Context, ident models.Identity) {
	f.ensured = append(f.ensured, ident)
}

func (f *fakeUserService) GetBySubjectID(ctx context.Context, subjectID string) (*models.User, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profileOut, nil
}

type fakeSessionStore struct {
	sessions map[string]models.Identity
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]models.Identity{}}
}

func (f *fakeSessionStore) Create(ctx context.Context, ident models.Identity) (string, error) {
	id := "sess-" + ident.Subject
	f.sessions[id] = ident
	return id, nil
}

func (f *fakeSessionStore) Get(ctx context.Context, id string) (*models.Identity, error) {
	ident, ok := f.sessions[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &ident, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

// -------- helpers --------

type env struct {
	router   *gin.Engine
	jobs     *fakeJobService
	users    *fakeUserService
	sessions *fakeSessionStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("AUTH_JWT_ISSUER", "")
	t.Setenv("AUTH_JWT_AUDIENCE", "")

	gin.SetMode(gin.TestMode)

	l := logrus.New()
	l.SetOutput(io.Discard)

	e := &env{
		jobs:     &fakeJobService{},
		users:    &fakeUserService{},
		sessions: newFakeSessionStore(),
	}
	e.router = gin.New()
	routes.RegisterRoutes(e.router, routes.Deps{
		Log:      l,
		Sessions: e.sessions,
		Job:      handlers.NewJobHandler(e.jobs),
		User:     handlers.NewUserHandler(e.users, e.sessions),
	})
	return e
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"email": subject + "@example.com",
		"name":  "Test User",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (e *env) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// -------- auth boundary --------

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	e := newEnv(t)
	id := primitive.NewObjectID().Hex()

	cases := []struct{ method, path string }{
		{http.MethodPost, "/job/jobs"},
		{http.MethodPut, "/job/jobs/apply/" + id},
		{http.MethodPut, "/job/jobs/like/" + id},
		{http.MethodPut, "/job/jobs/save/" + id},
		{http.MethodGet, "/job/jobs/" + id},
		{http.MethodDelete, "/job/jobs/" + id},
		{http.MethodPost, "/auth/logout"},
		{http.MethodPost, "/auth/user/resume"},
	}
	for _, c := range cases {
		w := e.do(t, c.method, c.path, "", "")
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", c.method, c.path)
		require.Equal(t, "Not authenticated", decode(t, w)["message"])
	}
}

func TestPublicRoutesServeAnonymous(t *testing.T) {
	e := newEnv(t)
	e.users.profileOut = &models.User{SubjectID: "auth0|u1", Name: "U"}

	for _, path := range []string{"/job/jobs", "/job/jobs/search", "/auth/user/auth0%7Cu1"} {
		w := e.do(t, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestInvalidTokenIsAnonymous(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/job/jobs", "not-a-jwt", `{}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

// -------- check-auth --------

func TestCheckAuth_Anonymous(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/auth/check-auth", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	require.Equal(t, false, body["isAuthenticated"])
	require.Empty(t, e.users.ensured)
}

func TestCheckAuth_EnsuresUser(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/auth/check-auth", signToken(t, "auth0|u1"), "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["isAuthenticated"])

	require.Len(t, e.users.ensured, 1)
	require.Equal(t, "auth0|u1", e.users.ensured[0].Subject)
	require.Equal(t, "auth0|u1@example.com", e.users.ensured[0].Email)
}

// -------- login / session cookie --------

func TestLogin_IssuesSessionCookie(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/auth/login", signToken(t, "auth0|u1"), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, e.users.ensured, 1)

	var sid string
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			sid = c.Value
		}
	}
	require.NotEmpty(t, sid)
	require.Contains(t, e.sessions.sessions, sid)

	// cookie alone authenticates a later request
	req := httptest.NewRequest(http.MethodGet, "/auth/check-auth", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sid})
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["isAuthenticated"])
}

func TestLogout_DeletesSession(t *testing.T) {
	e := newEnv(t)
	sid, err := e.sessions.Create(context.Background(), models.Identity{Subject: "auth0|u1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sid})
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, e.sessions.sessions, sid)
}

// -------- jobs --------

func TestCreateJob_Success(t *testing.T) {
	e := newEnv(t)
	e.jobs.createOut = &models.Job{ID: primitive.NewObjectID(), Title: "Engineer"}

	body := `{"title":"Engineer","salary":1000,"jobType":["FullTime"],"description":"Build things","skills":["Go"]}`
	w := e.do(t, http.MethodPost, "/job/jobs", signToken(t, "auth0|u1"), body)

	require.Equal(t, http.StatusCreated, w.Code)
	out := decode(t, w)
	require.Equal(t, "Job created successfully", out["message"])
	require.NotNil(t, out["job"])

	require.Equal(t, "Engineer", e.jobs.createIn.Title)
	require.NotNil(t, e.jobs.createIn.Salary)
	require.Equal(t, 1000.0, *e.jobs.createIn.Salary)
	require.Nil(t, e.jobs.createIn.Negotiable)
}

func TestCreateJob_ValidationErrorPassesThrough(t *testing.T) {
	e := newEnv(t)
	e.jobs.createErr = utils.E(utils.CodeInvalidArgument, "JobService.Create", "Title is required", nil)

	w := e.do(t, http.MethodPost, "/job/jobs", signToken(t, "auth0|u1"), `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Title is required", decode(t, w)["message"])
}

func TestCreateJob_MalformedBody(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/job/jobs", signToken(t, "auth0|u1"), `{"salary":"lots"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListJobs_WrappedResponse(t *testing.T) {
	e := newEnv(t)
	e.jobs.listOut = []models.JobWithCreator{{Job: models.Job{Title: "Engineer"}}}

	w := e.do(t, http.MethodGet, "/job/jobs", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	require.Contains(t, out, "jobs")
}

func TestSearchJobs_ForwardsQuery(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/job/jobs/search?tags=backend,go&location=remote&title=engineer", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "backend,go", e.jobs.searchTags)
	require.Equal(t, "remote", e.jobs.searchLocation)
	require.Equal(t, "engineer", e.jobs.searchTitle)
}

func TestApply_DuplicateIs400(t *testing.T) {
	e := newEnv(t)
	e.jobs.applyErr = utils.E(utils.CodeConflict, "JobService.Apply", "Already applied for this job", nil)

	w := e.do(t, http.MethodPut, "/job/jobs/apply/"+primitive.NewObjectID().Hex(), signToken(t, "auth0|u1"), "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Already applied for this job", decode(t, w)["message"])
}

func TestApply_ForbiddenRole(t *testing.T) {
	e := newEnv(t)
	e.jobs.applyErr = utils.E(utils.CodeForbidden, "JobService.Apply", "Only jobseekers can apply for jobs", nil)

	w := e.do(t, http.MethodPut, "/job/jobs/apply/"+primitive.NewObjectID().Hex(), signToken(t, "auth0|rec"), "")
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestApply_PassesCallerSubject(t *testing.T) {
	e := newEnv(t)
	id := primitive.NewObjectID()
	e.jobs.applyOut = &models.Job{ID: id}

	w := e.do(t, http.MethodPut, "/job/jobs/apply/"+id.Hex(), signToken(t, "auth0|seeker"), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, id.Hex(), e.jobs.applyJobID)
	require.Equal(t, "auth0|seeker", e.jobs.applySubject)
	require.Equal(t, "Application successful", decode(t, w)["message"])
}

func TestGetJobByID_NotFound(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/job/jobs/"+primitive.NewObjectID().Hex(), signToken(t, "auth0|u1"), "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Job not found", decode(t, w)["message"])
}

func TestDeleteJob_Success(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodDelete, "/job/jobs/"+primitive.NewObjectID().Hex(), signToken(t, "auth0|u1"), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Job deleted successfully", decode(t, w)["message"])
}

// -------- profile / resume --------

func TestGetProfile_NotFound(t *testing.T) {
	e := newEnv(t)
	e.users.profileErr = utils.E(utils.CodeNotFound, "UserService.GetBySubjectID", "User not found", nil)

	w := e.do(t, http.MethodGet, "/auth/user/auth0%7Cghost", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "User not found", decode(t, w)["message"])
}

func TestUploadResume_MissingFile(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/auth/user/resume", signToken(t, "auth0|u1"), "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func newMultipart(t *testing.T, buf *bytes.Buffer, field, filename, content string) string {
	t.Helper()
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return w.FormDataContentType()
}

func TestUploadResume_RejectsNonPDF(t *testing.T) {
	e := newEnv(t)

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "resume", "cv.txt", "plain text")

	req := httptest.NewRequest(http.MethodPost, "/auth/user/resume", &buf)
	req.Header.Set("Content-Type", mw)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "auth0|u1"))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "only .pdf is allowed", decode(t, rec)["message"])
}

package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/api/middleware"
	"github.com/jobhive/jobhive/internal/services"
	"github.com/jobhive/jobhive/internal/session"
	"github.com/jobhive/jobhive/internal/utils"
)

type UserHandler struct {
	svc      services.UserService
	sessions session.Store
}

func NewUserHandler(svc services.UserService, sessions session.Store) *UserHandler {
	return &UserHandler{svc: svc, sessions: sessions}
}

// CheckAuth reports authentication state and lazily provisions the internal
// user record on first sight. Provisioning failures never surface here.
func (h *UserHandler) CheckAuth(c *gin.Context) {
	ident, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"isAuthenticated": false,
			"message":         "User is not authenticated",
		})
		return
	}

	h.svc.EnsureUser(c.Request.Context(), ident)

	c.JSON(http.StatusOK, gin.H{
		"isAuthenticated": true,
		"user":            ident,
	})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	// profile lookup is keyed by the identity-provider subject id
	user, err := h.svc.GetBySubjectID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Login exchanges a verified bearer ID token for a server-side session.
func (h *UserHandler) Login(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	h.svc.EnsureUser(c.Request.Context(), ident)

	sid, err := h.sessions.Create(c.Request.Context(), ident)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "UserHandler.Login", "failed to create session", err))
		return
	}

	c.SetCookie(middleware.SessionCookie, sid, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"isAuthenticated": true,
		"user":            ident,
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	if sid, err := c.Cookie(middleware.SessionCookie); err == nil && sid != "" {
		if err := h.sessions.Delete(c.Request.Context(), sid); err != nil {
			writeError(c, utils.E(utils.CodeInternal, "UserHandler.Logout", "failed to end session", err))
			return
		}
	}

	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *UserHandler) UploadResume(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("resume")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "UserHandler.UploadResume", "missing multipart field 'resume'", err))
		return
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".pdf" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "UserHandler.UploadResume", "only .pdf is allowed", nil))
		return
	}
	if fh.Size <= 0 || fh.Size > 10<<20 {
		writeError(c, utils.E(utils.CodeInvalidArgument, "UserHandler.UploadResume", "file too large (max 10MB)", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "UserHandler.UploadResume", "failed to open upload", err))
		return
	}
	defer file.Close()

	// sniff content type (read 512 bytes)
	head := make([]byte, 512)
	n, _ := file.Read(head)
	head = head[:n]
	if http.DetectContentType(head) != "application/pdf" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "UserHandler.UploadResume", "invalid content type (must be pdf)", nil))
		return
	}

	// re-compose stream: head + remaining file
	r := &readJoin{a: bytes.NewReader(head), b: file}

	user, err := h.svc.UploadResume(c.Request.Context(), ident.Subject, ext, "application/pdf", r)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type readJoin struct {
	a *bytes.Reader
	b io.Reader
}

func (r *readJoin) Read(p []byte) (int, error) {
	if r.a != nil && r.a.Len() > 0 {
		return r.a.Read(p)
	}
	return r.b.Read(p)
}

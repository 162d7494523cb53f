package services

import (
	"context"
	"errors"
	"io"
	"regexp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jobhive/jobhive/internal/models"
	mongorepo "github.com/jobhive/jobhive/internal/repositories/mongo"
	"github.com/jobhive/jobhive/internal/storage"
	"github.com/jobhive/jobhive/internal/utils"
)

// basic address shape; anything fancier is the identity provider's problem
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type UserService interface {
	// EnsureUser creates the internal record for a freshly authenticated
	// identity if none exists. First-seen-wins: an existing record is never
	// updated. Failures are logged and swallowed so that a storage blip
	// never blocks login.
	EnsureUser(ctx context.Context, ident models.Identity)

	GetBySubjectID(ctx context.Context, subjectID string) (*models.User, error)
	UploadResume(ctx context.Context, subjectID, objectExt, contentType string, r io.Reader) (*models.User, error)
}

type userService struct {
	users    mongorepo.UserRepository
	uploader storage.Uploader
	log      *logrus.Logger
}

func NewUserService(users mongorepo.UserRepository, uploader storage.Uploader, log *logrus.Logger) UserService {
	return &userService{users: users, uploader: uploader, log: log}
}

func (s *userService) EnsureUser(ctx context.Context, ident models.Identity) {
	const op = "UserService.EnsureUser"

	if ident.Subject == "" {
		return
	}

	if _, err := s.users.GetBySubjectID(ctx, ident.Subject); err == nil {
		return
	} else if !errors.Is(err, utils.ErrNotFound) {
		s.log.WithError(err).WithField("op", op).Warn("user lookup failed")
		return
	}

	if !emailPattern.MatchString(ident.Email) {
		s.log.WithFields(logrus.Fields{"op": op, "subject": ident.Subject}).
			Warn("refusing to create user with invalid email")
		return
	}

	u := &models.User{
		SubjectID:      ident.Subject,
		Name:           ident.Name,
		Email:          ident.Email,
		Role:           models.RoleJobseeker,
		ProfilePicture: ident.Picture,
		Bio:            "No bio provided",
		Profession:     "No profession provided",
	}
	if err := s.users.Insert(ctx, u); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			// lost a first-seen race; the existing record wins
			return
		}
		s.log.WithError(err).WithField("op", op).Warn("failed to add user")
		return
	}
	s.log.WithFields(logrus.Fields{"op": op, "subject": ident.Subject}).Info("user added")
}

func (s *userService) GetBySubjectID(ctx context.Context, subjectID string) (*models.User, error) {
	const op = "UserService.GetBySubjectID"

	if subjectID == "" {
		return nil, utils.E(utils.CodeNotFound, op, "User not found", nil)
	}

	u, err := s.users.GetBySubjectID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "User not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get user", err)
	}
	return u, nil
}

func (s *userService) UploadResume(ctx context.Context, subjectID, objectExt, contentType string, r io.Reader) (*models.User, error) {
	const op = "UserService.UploadResume"

	u, err := s.GetBySubjectID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "resume storage is not configured", nil)
	}

	objectName := "resumes/" + u.ID.Hex() + "/" + uuid.NewString() + objectExt
	url, err := s.uploader.Upload(ctx, objectName, contentType, r)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload resume", err)
	}

	if err := s.users.SetResume(ctx, u.ID, url); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store resume url", err)
	}

	u.Resume = url
	return u, nil
}

package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jobhive/jobhive/internal/models"
	mongorepo "github.com/jobhive/jobhive/internal/repositories/mongo"
	"github.com/jobhive/jobhive/internal/utils"
)

// CreateJobInput carries the job fields from the create request. Salary and
// Negotiable are pointers so that "absent" and "zero" stay distinguishable.
type CreateJobInput struct {
	Title       string
	Location    string
	Salary      *float64
	SalaryType  string
	Negotiable  *bool
	JobType     []string
	Description string
	Tags        []string
	Skills      []string
}

// JobServiceOptions toggles behavior that is a product decision rather than
// a fixed rule.
type JobServiceOptions struct {
	// EnforceOwnerDelete restricts DELETE to the job's creator. Off by
	// default: historically any authenticated user could delete any job.
	EnforceOwnerDelete bool
}

type JobService interface {
	Create(ctx context.Context, subjectID string, in CreateJobInput) (*models.Job, error)
	List(ctx context.Context) ([]models.JobWithCreator, error)
	ListByUser(ctx context.Context, userID string) ([]models.JobWithCreator, error)
	GetByID(ctx context.Context, jobID string) (*models.JobWithCreator, error)
	Search(ctx context.Context, tags, location, title string) ([]models.JobWithCreator, error)
	Apply(ctx context.Context, jobID, subjectID string) (*models.Job, error)
	ToggleLike(ctx context.Context, jobID, subjectID string) (*models.Job, error)
	ToggleSave(ctx context.Context, jobID, subjectID string) (*models.User, error)
	Delete(ctx context.Context, jobID, subjectID string) error
}

type jobService struct {
	jobs  mongorepo.JobRepository
	users mongorepo.UserRepository
	tx    mongorepo.TxRunner
	opts  JobServiceOptions
}

func NewJobService(jobs mongorepo.JobRepository, users mongorepo.UserRepository, tx mongorepo.TxRunner, opts JobServiceOptions) JobService {
	return &jobService{jobs: jobs, users: users, tx: tx, opts: opts}
}

func (s *jobService) Create(ctx context.Context, subjectID string, in CreateJobInput) (*models.Job, error) {
	const op = "JobService.Create"

	user, err := s.callerBySubject(ctx, op, subjectID)
	if err != nil {
		return nil, err
	}

	// required-field checks in contract order; first failure wins
	switch {
	case in.Title == "":
		return nil, utils.E(utils.CodeInvalidArgument, op, "Title is required", nil)
	case in.Description == "":
		return nil, utils.E(utils.CodeInvalidArgument, op, "Description is required", nil)
	case in.Salary == nil:
		return nil, utils.E(utils.CodeInvalidArgument, op, "Salary is required", nil)
	case len(in.JobType) == 0:
		return nil, utils.E(utils.CodeInvalidArgument, op, "Job Type is required", nil)
	case len(in.Skills) == 0:
		return nil, utils.E(utils.CodeInvalidArgument, op, "Skills are required", nil)
	}
	if *in.Salary < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Salary must be a positive number", nil)
	}

	job := &models.Job{
		Title:       in.Title,
		Location:    in.Location,
		Salary:      *in.Salary,
		SalaryType:  in.SalaryType,
		JobType:     in.JobType,
		Description: in.Description,
		Tags:        in.Tags,
		Skills:      in.Skills,
		CreatedBy:   user.ID,
	}
	if job.Location == "" {
		job.Location = "Remote"
	}
	if job.SalaryType == "" {
		job.SalaryType = "Year"
	}
	if in.Negotiable != nil {
		job.Negotiable = *in.Negotiable
	}
	if job.Tags == nil {
		job.Tags = []string{}
	}

	if err := s.jobs.Insert(ctx, job); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create job", err)
	}
	return job, nil
}

func (s *jobService) List(ctx context.Context) ([]models.JobWithCreator, error) {
	const op = "JobService.List"

	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list jobs", err)
	}
	return s.withCreators(ctx, op, jobs)
}

func (s *jobService) ListByUser(ctx context.Context, userID string) ([]models.JobWithCreator, error) {
	const op = "JobService.ListByUser"

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.E(utils.CodeNotFound, op, "User not found", err)
	}
	if _, err := s.users.GetByID(ctx, oid); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "User not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get user", err)
	}

	jobs, err := s.jobs.ListByCreator(ctx, oid)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list jobs", err)
	}
	return s.withCreators(ctx, op, jobs)
}

func (s *jobService) GetByID(ctx context.Context, jobID string) (*models.JobWithCreator, error) {
	const op = "JobService.GetByID"

	job, err := s.jobByID(ctx, op, jobID)
	if err != nil {
		return nil, err
	}

	out, err := s.withCreators(ctx, op, []models.Job{*job})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *jobService) Search(ctx context.Context, tags, location, title string) ([]models.JobWithCreator, error) {
	const op = "JobService.Search"

	f := mongorepo.SearchFilter{Location: location, Title: title}
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			f.Tags = append(f.Tags, t)
		}
	}

	jobs, err := s.jobs.Search(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to search jobs", err)
	}
	return s.withCreators(ctx, op, jobs)
}

func (s *jobService) Apply(ctx context.Context, jobID, subjectID string) (*models.Job, error) {
	const op = "JobService.Apply"

	job, err := s.jobByID(ctx, op, jobID)
	if err != nil {
		return nil, err
	}
	user, err := s.callerBySubject(ctx, op, subjectID)
	if err != nil {
		return nil, err
	}

	if user.Role != models.RoleJobseeker {
		return nil, utils.E(utils.CodeForbidden, op, "Only jobseekers can apply for jobs", nil)
	}
	if containsID(job.Applicants, user.ID) {
		return nil, utils.E(utils.CodeConflict, op, "Already applied for this job", nil)
	}
	if containsID(user.AppliedJobs, job.ID) {
		return nil, utils.E(utils.CodeConflict, op, "Job already exists in user's applied jobs", nil)
	}

	// both sides of the relation move in one transaction; the conditional
	// updates also close the duplicate race between check and write
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		changed, err := s.jobs.AddApplicant(txCtx, job.ID, user.ID)
		if err != nil {
			return err
		}
		if !changed {
			return utils.E(utils.CodeConflict, op, "Already applied for this job", nil)
		}

		changed, err = s.users.AddAppliedJob(txCtx, user.ID, job.ID)
		if err != nil {
			return err
		}
		if !changed {
			return utils.E(utils.CodeConflict, op, "Job already exists in user's applied jobs", nil)
		}
		return nil
	})
	if err != nil {
		if utils.IsCode(err, utils.CodeConflict) {
			return nil, err
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to record application", err)
	}

	return s.refreshJob(ctx, op, job.ID)
}

func (s *jobService) ToggleLike(ctx context.Context, jobID, subjectID string) (*models.Job, error) {
	const op = "JobService.ToggleLike"

	job, err := s.jobByID(ctx, op, jobID)
	if err != nil {
		return nil, err
	}
	user, err := s.callerBySubject(ctx, op, subjectID)
	if err != nil {
		return nil, err
	}

	if containsID(job.Likes, user.ID) {
		_, err = s.jobs.RemoveLike(ctx, job.ID, user.ID)
	} else {
		_, err = s.jobs.AddLike(ctx, job.ID, user.ID)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to toggle like", err)
	}

	return s.refreshJob(ctx, op, job.ID)
}

func (s *jobService) ToggleSave(ctx context.Context, jobID, subjectID string) (*models.User, error) {
	const op = "JobService.ToggleSave"

	job, err := s.jobByID(ctx, op, jobID)
	if err != nil {
		return nil, err
	}
	user, err := s.callerBySubject(ctx, op, subjectID)
	if err != nil {
		return nil, err
	}

	if containsID(user.SavedJobs, job.ID) {
		_, err = s.users.RemoveSavedJob(ctx, user.ID, job.ID)
	} else {
		_, err = s.users.AddSavedJob(ctx, user.ID, job.ID)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to toggle saved job", err)
	}

	fresh, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to reload user", err)
	}
	return fresh, nil
}

func (s *jobService) Delete(ctx context.Context, jobID, subjectID string) error {
	const op = "JobService.Delete"

	job, err := s.jobByID(ctx, op, jobID)
	if err != nil {
		return err
	}
	user, err := s.callerBySubject(ctx, op, subjectID)
	if err != nil {
		return err
	}

	if s.opts.EnforceOwnerDelete && job.CreatedBy != user.ID {
		return utils.E(utils.CodeForbidden, op, "Only the job owner can delete this job", nil)
	}

	// delete and cascade-clean applied/saved references together
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.jobs.Delete(txCtx, job.ID); err != nil {
			return err
		}
		return s.users.PullJobRefs(txCtx, job.ID)
	})
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "Job not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete job", err)
	}
	return nil
}

// withCreators expands each job's createdBy reference to the creator's
// name and picture, the job-listing projection.
func (s *jobService) withCreators(ctx context.Context, op string, jobs []models.Job) ([]models.JobWithCreator, error) {
	ids := make([]primitive.ObjectID, 0, len(jobs))
	seen := make(map[primitive.ObjectID]struct{}, len(jobs))
	for _, j := range jobs {
		if _, ok := seen[j.CreatedBy]; !ok {
			seen[j.CreatedBy] = struct{}{}
			ids = append(ids, j.CreatedBy)
		}
	}

	creators, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load job creators", err)
	}
	byID := make(map[primitive.ObjectID]models.User, len(creators))
	for _, u := range creators {
		byID[u.ID] = u
	}

	out := make([]models.JobWithCreator, 0, len(jobs))
	for _, j := range jobs {
		v := models.JobWithCreator{Job: j, CreatedBy: models.Creator{ID: j.CreatedBy}}
		if u, ok := byID[j.CreatedBy]; ok {
			v.CreatedBy.Name = u.Name
			v.CreatedBy.ProfilePicture = u.ProfilePicture
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *jobService) jobByID(ctx context.Context, op, jobID string) (*models.Job, error) {
	oid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return nil, utils.E(utils.CodeNotFound, op, "Job not found", err)
	}
	job, err := s.jobs.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get job", err)
	}
	return job, nil
}

func (s *jobService) callerBySubject(ctx context.Context, op, subjectID string) (*models.User, error) {
	if subjectID == "" {
		return nil, utils.E(utils.CodeNotFound, op, "User not found", nil)
	}
	user, err := s.users.GetBySubjectID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "User not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get user", err)
	}
	return user, nil
}

func (s *jobService) refreshJob(ctx context.Context, op string, id primitive.ObjectID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to reload job", err)
	}
	return job, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/jobhive/jobhive/internal/models"
	"github.com/jobhive/jobhive/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository interface {
	Insert(ctx context.Context, u *models.User) error
	GetBySubjectID(ctx context.Context, subjectID string) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)

	// AddAppliedJob appends jobID to the user's applied list only when it is
	// not already present; the bool reports whether the record changed.
	AddAppliedJob(ctx context.Context, userID, jobID primitive.ObjectID) (bool, error)
	AddSavedJob(ctx context.Context, userID, jobID primitive.ObjectID) (bool, error)
	RemoveSavedJob(ctx context.Context, userID, jobID primitive.ObjectID) (bool, error)

	SetResume(ctx context.Context, userID primitive.ObjectID, resumeURL string) error

	// PullJobRefs removes a deleted job from every user's applied/saved lists.
	PullJobRefs(ctx context.Context, jobID primitive.ObjectID) error
}

type userRepo struct {
	col *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepository {
	return &userRepo{col: db.Collection("users")}
}

func (r *userRepo) Insert(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.AppliedJobs == nil {
		u.AppliedJobs = []primitive.ObjectID{}
	}
	if u.SavedJobs == nil {
		u.SavedJobs = []primitive.ObjectID{}
	}

	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.ErrDuplicate
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (r *userRepo) GetBySubjectID(ctx context.Context, subjectID string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"subject_id": subjectID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &u, err
}

func (r *userRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &u, err
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) AddAppliedJob(ctx context.Context, userID, jobID primitive.ObjectID) (bool, error) {
	return r.conditionalUpdate(ctx,
		bson.M{"_id": userID, "applied_jobs": bson.M{"$ne": jobID}},
		bson.M{"$addToSet": bson.M{"applied_jobs": jobID}},
	)
}

func (r *userRepo) AddSavedJob(ctx context.Context, userID, jobID primitive.ObjectID) (bool, error) {
	return r.conditionalUpdate(ctx,
		bson.M{"_id": userID, "saved_jobs": bson.M{"$ne": jobID}},
		bson.M{"$addToSet": bson.M{"saved_jobs": jobID}},
	)
}

func (r *userRepo) RemoveSavedJob(ctx context.Context, userID, jobID primitive.ObjectID) (bool, error) {
	return r.conditionalUpdate(ctx,
		bson.M{"_id": userID, "saved_jobs": jobID},
		bson.M{"$pull": bson.M{"saved_jobs": jobID}},
	)
}

func (r *userRepo) SetResume(ctx context.Context, userID primitive.ObjectID, resumeURL string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"resume": resumeURL, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *userRepo) PullJobRefs(ctx context.Context, jobID primitive.ObjectID) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"$or": bson.A{
			bson.M{"applied_jobs": jobID},
			bson.M{"saved_jobs": jobID},
		}},
		bson.M{
			"$pull": bson.M{"applied_jobs": jobID, "saved_jobs": jobID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

// conditionalUpdate applies update only when filter still matches, closing
// the read-check-write race on membership lists.
func (r *userRepo) conditionalUpdate(ctx context.Context, filter, update bson.M) (bool, error) {
	if set, ok := update["$set"].(bson.M); ok {
		set["updated_at"] = time.Now().UTC()
	} else {
		update["$set"] = bson.M{"updated_at": time.Now().UTC()}
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

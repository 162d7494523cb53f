package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/jobhive/jobhive/internal/models"
	"github.com/jobhive/jobhive/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SearchFilter narrows job listings; zero-value fields impose no constraint.
type SearchFilter struct {
	Tags     []string // match jobs whose tag list intersects this set
	Location string   // case-insensitive substring
	Title    string   // case-insensitive substring
}

type JobRepository interface {
	Insert(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	List(ctx context.Context) ([]models.Job, error)
	ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]models.Job, error)
	Search(ctx context.Context, f SearchFilter) ([]models.Job, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Conditional membership mutations; the bool reports whether the
	// record changed (false means the caller lost a race or the state
	// was already as requested).
	AddApplicant(ctx context.Context, jobID, userID primitive.ObjectID) (bool, error)
	AddLike(ctx context.Context, jobID, userID primitive.ObjectID) (bool, error)
	RemoveLike(ctx context.Context, jobID, userID primitive.ObjectID) (bool, error)
}

type jobRepo struct {
	col *mongo.Collection
}

func NewJobRepo(db *mongo.Database) JobRepository {
	return &jobRepo{col: db.Collection("jobs")}
}

func (r *jobRepo) Insert(ctx context.Context, j *models.Job) error {
	now := time.Now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
	if j.Tags == nil {
		j.Tags = []string{}
	}
	if j.Likes == nil {
		j.Likes = []primitive.ObjectID{}
	}
	if j.Applicants == nil {
		j.Applicants = []primitive.ObjectID{}
	}

	res, err := r.col.InsertOne(ctx, j)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		j.ID = oid
	}
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	var j models.Job
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&j)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &j, err
}

func (r *jobRepo) List(ctx context.Context) ([]models.Job, error) {
	return r.find(ctx, bson.M{})
}

func (r *jobRepo) ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]models.Job, error) {
	return r.find(ctx, bson.M{"created_by": creatorID})
}

func (r *jobRepo) Search(ctx context.Context, f SearchFilter) ([]models.Job, error) {
	filter := bson.M{}
	if len(f.Tags) > 0 {
		filter["tags"] = bson.M{"$in": f.Tags}
	}
	if f.Location != "" {
		filter["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Location), Options: "i"}
	}
	if f.Title != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Title), Options: "i"}
	}
	return r.find(ctx, filter)
}

func (r *jobRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *jobRepo) AddApplicant(ctx context.Context, jobID, userID primitive.ObjectID) (bool, error) {
	return r.conditionalUpdate(ctx,
		bson.M{"_id": jobID, "applicants": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"applicants": userID}},
	)
}

func (r *jobRepo) AddLike(ctx context.Context, jobID, userID primitive.ObjectID) (bool, error) {
	return r.conditionalUpdate(ctx,
		bson.M{"_id": jobID, "likes": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"likes": userID}},
	)
}

func (r *jobRepo) RemoveLike(ctx context.Context, jobID, userID primitive.ObjectID) (bool, error) {
	return r.conditionalUpdate(ctx,
		bson.M{"_id": jobID, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
	)
}

func (r *jobRepo) find(ctx context.Context, filter bson.M) ([]models.Job, error) {
	cur, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Job
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobRepo) conditionalUpdate(ctx context.Context, filter, update bson.M) (bool, error) {
	update["$set"] = bson.M{"updated_at": time.Now().UTC()}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

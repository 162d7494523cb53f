package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Job struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Location    string             `bson:"location" json:"location"`
	Salary      float64            `bson:"salary" json:"salary"`
	SalaryType  string             `bson:"salary_type" json:"salaryType"`
	Negotiable  bool               `bson:"negotiable" json:"negotiable"`
	JobType     []string           `bson:"job_type" json:"jobType"`
	Description string             `bson:"description" json:"description"`
	Tags        []string           `bson:"tags" json:"tags"`
	Skills      []string           `bson:"skills" json:"skills"`

	Likes      []primitive.ObjectID `bson:"likes" json:"likes"`
	Applicants []primitive.ObjectID `bson:"applicants" json:"applicants"`
	CreatedBy  primitive.ObjectID   `bson:"created_by" json:"createdBy"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Creator is the subset of User embedded in expanded job listings.
type Creator struct {
	ID             primitive.ObjectID `json:"_id"`
	Name           string             `json:"name"`
	ProfilePicture string             `json:"profilePicture,omitempty"`
}

// JobWithCreator is a Job whose createdBy reference has been expanded.
// The shallow CreatedBy field shadows the embedded one when marshalling.
type JobWithCreator struct {
	Job
	CreatedBy Creator `json:"createdBy"`
}

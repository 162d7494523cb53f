package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleJobseeker UserRole = "jobseeker"
	RoleRecruiter UserRole = "recruiter"
)

// User is created lazily on first successful login (UserService.EnsureUser)
// and is never refreshed from identity-provider data afterwards.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SubjectID string             `bson:"subject_id" json:"subjectId"` // stable id from the identity provider
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Role      UserRole           `bson:"role" json:"role"`

	AppliedJobs []primitive.ObjectID `bson:"applied_jobs" json:"appliedJobs"`
	SavedJobs   []primitive.ObjectID `bson:"saved_jobs" json:"savedJobs"`

	Resume         string `bson:"resume,omitempty" json:"resume,omitempty"`
	ProfilePicture string `bson:"profile_picture,omitempty" json:"profilePicture,omitempty"`
	Bio            string `bson:"bio" json:"bio"`
	Profession     string `bson:"profession" json:"profession"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the registrant's participation category.
type Role string

const (
	RoleStudent   Role = "Student"
	RoleFaculty   Role = "Faculty"
	RoleVolunteer Role = "Volunteer"
)

// Roles lists the accepted roles in display order.
var Roles = []Role{RoleStudent, RoleFaculty, RoleVolunteer}

func (r Role) IsValid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// RegistrationsCollection holds one document per Registrant.
const RegistrationsCollection = "registrations"

// Registrant is one person's registration record. Phone is the canonical
// 10-digit number; records written by older releases may carry a "+91" prefix.
type Registrant struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	College   string             `bson:"college" json:"college"`
	Course    string             `bson:"course" json:"course"`
	Role      Role               `bson:"role" json:"role"`
	Phone     string             `bson:"phone" json:"phone"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"` // UTC, set once on insert
}

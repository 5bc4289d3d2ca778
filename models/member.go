package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Member is the display summary of an employee, resolved from the employees
// collection when a project is populated.
type Member struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	LastName string             `bson:"lastName" json:"lastName"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Role     string             `bson:"role" json:"role"`
	IsActive bool               `bson:"isActive" json:"isActive"`
}

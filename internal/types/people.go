package types

import "strings"

// PersonRole marks which roster a person belongs to
type PersonRole string

const (
	RoleAgent   PersonRole = "agent"
	RoleManager PersonRole = "manager"
	RoleHead    PersonRole = "head"
)

// Person is a roster entry used only for display-name resolution. The
// engine never computes with people, only with reference IDs.
type Person struct {
	ReferenceID string     `json:"referenceId" dynamodbav:"ReferenceID" bson:"reference_id"`
	FirstName   string     `json:"firstName" dynamodbav:"FirstName" bson:"first_name"`
	LastName    string     `json:"lastName" dynamodbav:"LastName" bson:"last_name"`
	Role        PersonRole `json:"role" dynamodbav:"Role" bson:"role"`
}

// DisplayName joins first and last name, falling back to the reference ID
func (p Person) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name == "" {
		return p.ReferenceID
	}
	return name
}

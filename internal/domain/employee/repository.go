package employee

import "context"

// EmployeeRepository reads employee identities and device key bindings.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
}

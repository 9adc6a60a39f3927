package domain

// Gate decides whether an already resolved identity may proceed.
type Gate func(id *Identity) error

func Active(id *Identity) error {
	if id.Disabled {
		return ErrInactiveAccount
	}
	return nil
}

func Admin(id *Identity) error { return hasRole(id, RoleAdmin) }

func Student(id *Identity) error { return hasRole(id, RoleStudent) }

func Professor(id *Identity) error { return hasRole(id, RoleProfessor) }

func AdminOrProfessor(id *Identity) error { return hasRole(id, RoleAdmin, RoleProfessor) }

func hasRole(id *Identity, allowed ...Role) error {
	for _, r := range allowed {
		if id.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// Chain runs gates left to right and stops at the first failure.
func Chain(gates ...Gate) Gate {
	return func(id *Identity) error {
		if id == nil {
			return ErrInvalidToken
		}
		for _, g := range gates {
			if err := g(id); err != nil {
				return err
			}
		}
		return nil
	}
}

// Then appends gates after g.
func (g Gate) Then(next ...Gate) Gate {
	return Chain(append([]Gate{g}, next...)...)
}

var (
	RequireActive           = Chain(Active)
	RequireAdmin            = Chain(Active, Admin)
	RequireStudent          = Chain(Active, Student)
	RequireProfessor        = Chain(Active, Professor)
	RequireAdminOrProfessor = Chain(Active, AdminOrProfessor)
)

package domain

// Actor is the authenticated caller of an operation. A zero Actor is an
// anonymous guest.
type Actor struct {
	UserID int64
	Role   UserRole
}

func (a Actor) IsGuest() bool { return a.UserID == 0 }
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
func (a Actor) IsStaff() bool { return a.Role == RoleStaff || a.Role == RoleAdmin }

// UserIDPtr is nil for guests.
func (a Actor) UserIDPtr() *int64 {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}

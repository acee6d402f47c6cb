package domain

type User struct {
	ID        uint     `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Strikes   int      `json:"strikes"`
	Groups    []string `json:"groups"`
}

// Actor is the caller of a service operation, resolved once by the auth layer.
type Actor struct {
	UserID  uint
	Groups  []string
	IsAdmin bool
}

// CanManage reports whether the actor may act on registrations of userID.
func (a Actor) CanManage(userID uint) bool {
	return a.IsAdmin || a.UserID == userID
}

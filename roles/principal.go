package roles

// Principal is the authenticated actor performing an operation, together
// with its resolved role set. Built once per request by the auth middleware.
type Principal struct {
	UserID uint
	Name   string
	Email  string
	Roles  Set
}

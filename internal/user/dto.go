package user

// ReassignManagerRequest carries the new manager assignment. A null
// manager_id detaches the user from the hierarchy.
type ReassignManagerRequest struct {
	ManagerID *int64 `json:"manager_id"`
}

type ListResponse struct {
	Users []*User `json:"users"`
}

type SubordinatesResponse struct {
	ManagerID    int64   `json:"manager_id"`
	Subordinates []*User `json:"subordinates"`
}

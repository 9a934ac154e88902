package authz

import (
	"context"
	"sort"

	"github.com/salesloop/crm-backend/internal"
)

// IsSubordinate reports whether targetID transitively reports to managerID.
// The walk follows manager links upward from the target with an explicit
// visited set; revisiting a node terminates the walk rather than erroring,
// since nothing on the write path prevents a manager cycle. A user is never
// their own subordinate.
func (e *Engine) IsSubordinate(ctx context.Context, managerID, targetID int64) (bool, error) {
	if managerID == targetID {
		if _, err := internal.RequireTenantID(ctx); err != nil {
			return false, err
		}
		return false, nil
	}

	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return false, err
	}

	visited := make(map[int64]struct{})
	current := targetID
	for {
		if _, seen := visited[current]; seen {
			return false, nil
		}
		visited[current] = struct{}{}

		u, err := e.users.FindUserByID(ctx, tenantID, current)
		if err != nil {
			return false, err
		}
		if u == nil || u.ManagerID == nil {
			return false, nil
		}
		if *u.ManagerID == managerID {
			return true, nil
		}
		current = *u.ManagerID
	}
}

// AllSubordinates returns the transitive closure of direct reports below
// managerID. Breadth-first with a worklist; direct-report ids are sorted
// before enqueueing so the output order is stable for a fixed graph
// regardless of store iteration order. The visited set makes a corrupted
// (cyclic) graph terminate.
func (e *Engine) AllSubordinates(ctx context.Context, managerID int64) ([]int64, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	visited := map[int64]struct{}{managerID: {}}
	queue := []int64{managerID}
	subordinates := make([]int64, 0)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		reports, err := e.users.FindUsersByManagerID(ctx, tenantID, current)
		if err != nil {
			return nil, err
		}

		ids := make([]int64, 0, len(reports))
		for _, r := range reports {
			if r != nil {
				ids = append(ids, r.ID)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			if _, seen := visited[id]; seen {
				continue
			}
			visited[id] = struct{}{}
			subordinates = append(subordinates, id)
			queue = append(queue, id)
		}
	}

	return subordinates, nil
}

package domain

type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterByUser
	FilterByUserAndStatus
)

// GameFilter selects games for list and report queries.
// Build it with AllGames, ByUser or ByUserAndStatus.
type GameFilter struct {
	Kind   FilterKind
	UserID string
	Status GameStatus
}

func AllGames() GameFilter {
	return GameFilter{Kind: FilterNone}
}

func ByUser(userID string) GameFilter {
	return GameFilter{Kind: FilterByUser, UserID: userID}
}

func ByUserAndStatus(userID string, status GameStatus) GameFilter {
	return GameFilter{Kind: FilterByUserAndStatus, UserID: userID, Status: status}
}

// Matches reports whether g is selected by the filter.
func (f GameFilter) Matches(g Game) bool {
	switch f.Kind {
	case FilterByUser:
		return g.UserID == f.UserID
	case FilterByUserAndStatus:
		return g.UserID == f.UserID && g.Status == f.Status
	default:
		return true
	}
}

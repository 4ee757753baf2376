package domain

// An ordered origin/destination pair of display-formatted place names.
type RoutePair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Complete reports whether both endpoints are set.
func (r RoutePair) Complete() bool { return r.From != "" && r.To != "" }

// A persisted record of a past search and its result count.
type SearchHistoryEntry struct {
	ID          int64  `json:"id"`
	From        string `json:"from"`
	To          string `json:"to"`
	ResultCount int    `json:"resultCount"`
	Timestamp   string `json:"timestamp"`
}

func (e SearchHistoryEntry) Route() RoutePair { return RoutePair{From: e.From, To: e.To} }

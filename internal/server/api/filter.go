package api

import (
	"cmp"
	"net/url"
	"slices"
	"strings"

	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
)

// List views.
const (
	viewApproved = "approved"
	viewPending  = "pending"
	viewActive   = "active"
)

// Sort orders.
const (
	sortNew   = "new"
	sortVotes = "votes"
)

const filterAll = "All"

// listQuery is the parsed query string of GET /api/suggestions.
type listQuery struct {
	View     string
	Category string
	Status   string
	Search   string
	Sort     string
}

func parseListQuery(q url.Values) (listQuery, bool) {
	lq := listQuery{
		View:     cmp.Or(q.Get("view"), viewApproved),
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Search:   strings.TrimSpace(q.Get("q")),
		Sort:     cmp.Or(q.Get("sort"), sortNew),
	}
	switch lq.View {
	case viewApproved, viewPending, viewActive:
	default:
		return lq, false
	}
	switch lq.Sort {
	case sortNew, sortVotes:
	default:
		return lq, false
	}
	return lq, true
}

// apply narrows xs by category name, status name and free text, then sorts
// newest first or by votes with newest breaking ties. An empty or "All"
// category or status matches everything.
func (lq listQuery) apply(xs []*models.Suggestion) []*models.Suggestion {
	out := make([]*models.Suggestion, 0, len(xs))
	search := strings.ToLower(lq.Search)

	for _, s := range xs {
		if lq.Category != "" && lq.Category != filterAll && s.Category.CategoryName != lq.Category {
			continue
		}
		if lq.Status != "" && lq.Status != filterAll {
			if s.SuggestionStatus == nil || s.SuggestionStatus.StatusName != lq.Status {
				continue
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Suggestion), search) &&
			!strings.Contains(strings.ToLower(s.Description), search) {
			continue
		}
		out = append(out, s)
	}

	byNewest := func(a, b *models.Suggestion) int {
		return b.DateCreated.Compare(a.DateCreated)
	}
	if lq.Sort == sortVotes {
		slices.SortStableFunc(out, func(a, b *models.Suggestion) int {
			return cmp.Or(cmp.Compare(b.VoteCount(), a.VoteCount()), byNewest(a, b))
		})
	} else {
		slices.SortStableFunc(out, byNewest)
	}
	return out
}

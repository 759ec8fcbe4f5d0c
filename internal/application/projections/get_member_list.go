package projections

import (
	"context"
	"time"

	"gymhub/internal/adapters/storage/member"
	"gymhub/internal/application/listutil"
	domainMember "gymhub/internal/domain/member"
)

// MemberListFilterKeys are the exact-match filters the member list accepts.
var MemberListFilterKeys = []string{"status", "plan"}

// GetMemberListQuery carries list parameters parsed from the request.
type GetMemberListQuery struct {
	listutil.ListParams
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberStore MemberStore
	Now         func() time.Time
}

// MemberRow is a member with the days left on their membership.
type MemberRow struct {
	domainMember.Member
	DaysRemaining int
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members []MemberRow
	Page    listutil.PageInfo
	Params  listutil.ListParams
}

// QueryGetMemberList retrieves one page of members matching the search and filters.
// PRE: Sort is empty or one of member.SortColumns
// POST: Page.Total counts all matches; Members holds at most PerPage rows
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	now := clock(deps.Now)
	filter := member.ListFilter{
		Search: query.Search,
		Status: query.Filters["status"],
		Plan:   query.Filters["plan"],
		Sort:   query.Sort,
		Dir:    query.Dir,
	}

	total, err := deps.MemberStore.Count(ctx, filter)
	if err != nil {
		return GetMemberListResult{}, err
	}
	page := listutil.NewPageInfo(query.Page, query.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()

	members, err := deps.MemberStore.List(ctx, filter)
	if err != nil {
		return GetMemberListResult{}, err
	}

	rows := make([]MemberRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, MemberRow{Member: m, DaysRemaining: m.DaysRemaining(now)})
	}
	return GetMemberListResult{Members: rows, Page: page, Params: query.ListParams}, nil
}

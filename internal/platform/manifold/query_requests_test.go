package manifold

import (
	"testing"
	"time"
)

func TestMarketsQueryEncoding(t *testing.T) {
	q := MarketsQuery{
		Limit:  intPtr(500),
		Sort:   SortLastBetTime,
		Order:  OrderAsc,
		Before: "m123",
	}
	vals := q.Payload().Values()
	if got := vals.Get("limit"); got != "500" {
		t.Errorf("limit = %q, want 500", got)
	}
	if got := vals.Get("sort"); got != "last-bet-time" {
		t.Errorf("sort = %q, want last-bet-time", got)
	}
	if got := vals.Get("order"); got != "asc" {
		t.Errorf("order = %q, want asc", got)
	}
	if got := vals.Get("before"); got != "m123" {
		t.Errorf("before = %q, want m123", got)
	}
	if vals.Has("userId") || vals.Has("groupId") {
		t.Errorf("unset fields encoded: %v", vals)
	}
}

func TestZeroQueriesEncodeEmpty(t *testing.T) {
	queries := []Request{
		MarketsQuery{},
		BetsQuery{},
		CommentsQuery{},
		UsersQuery{},
		GroupsQuery{},
		PositionsQuery{},
		ManagramsQuery{},
		LeaguesQuery{},
	}
	for i, q := range queries {
		if vals := q.Payload().Values(); len(vals) != 0 {
			t.Errorf("query %d: zero value encoded %v, want nothing", i, vals)
		}
	}
}

func TestGroupsQueryBeforeTimeIsMillis(t *testing.T) {
	when := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	vals := GroupsQuery{BeforeTime: &when}.Payload().Values()
	want := "1770091506000"
	if got := vals.Get("beforeTime"); got != want {
		t.Errorf("beforeTime = %q, want %q", got, want)
	}
}

func TestManagramsQueryCursors(t *testing.T) {
	before := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := ManagramsQuery{ToID: "u1", Before: &before, After: &after}.Payload().Values()
	if got := vals.Get("toId"); got != "u1" {
		t.Errorf("toId = %q", got)
	}
	if vals.Get("before") == "" || vals.Get("after") == "" {
		t.Errorf("cursors missing: %v", vals)
	}
	if vals.Get("before") <= vals.Get("after") {
		t.Errorf("before %q should exceed after %q", vals.Get("before"), vals.Get("after"))
	}
}

func TestSearchQueryAlwaysSendsTerm(t *testing.T) {
	vals := SearchQuery{Term: "election", Filter: FilterOpen, ContractType: ContractBinary}.Payload().Values()
	if got := vals.Get("term"); got != "election" {
		t.Errorf("term = %q", got)
	}
	if got := vals.Get("filter"); got != "open" {
		t.Errorf("filter = %q", got)
	}
	if got := vals.Get("contractType"); got != "BINARY" {
		t.Errorf("contractType = %q", got)
	}
}

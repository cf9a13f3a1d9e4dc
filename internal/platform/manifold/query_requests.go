package manifold

import "time"

// The query types below are parameter bags for the GET endpoints. Every field
// is optional, the zero value of each bag is valid and queries with platform
// defaults, and absent fields never appear in the encoded query string.

// MarketsQuery lists markets, newest first by default.
type MarketsQuery struct {
	// Limit caps the number of markets returned.
	Limit *int
	// Sort picks the timestamp to order by.
	Sort MarketSort
	// Order is ascending or descending.
	Order SortOrder
	// Before is the market ID cursor to page from.
	Before string
	// UserID restricts to markets created by this user.
	UserID string
	// GroupID restricts to markets tagged with this topic.
	GroupID string
}

// Payload renders the query parameters.
func (q MarketsQuery) Payload() Payload {
	p := Payload{}
	p.setIntPtr("limit", q.Limit)
	p.setString("sort", string(q.Sort))
	p.setString("order", string(q.Order))
	p.setString("before", q.Before)
	p.setString("userId", q.UserID)
	p.setString("groupId", q.GroupID)
	return p
}

// SearchQuery runs full-text market search. Term is required by the endpoint;
// an empty term is sent as-is and rejected server-side.
type SearchQuery struct {
	Term         string
	Sort         SearchSort
	Filter       SearchFilter
	ContractType ContractType
	TopicSlug    string
	CreatorID    string
	Limit        *int
	Offset       *int
}

// Payload renders the query parameters.
func (q SearchQuery) Payload() Payload {
	p := Payload{}
	p.set("term", q.Term)
	p.setString("sort", string(q.Sort))
	p.setString("filter", string(q.Filter))
	p.setString("contractType", string(q.ContractType))
	p.setString("topicSlug", q.TopicSlug)
	p.setString("creatorId", q.CreatorID)
	p.setIntPtr("limit", q.Limit)
	p.setIntPtr("offset", q.Offset)
	return p
}

// BetsQuery lists bets.
type BetsQuery struct {
	UserID       string
	Username     string
	ContractID   string
	ContractSlug string
	Limit        *int
	// Before and After are bet ID cursors.
	Before string
	After  string
	Kinds  BetKinds
	Order  SortOrder
}

// Payload renders the query parameters.
func (q BetsQuery) Payload() Payload {
	p := Payload{}
	p.setString("userId", q.UserID)
	p.setString("username", q.Username)
	p.setString("contractId", q.ContractID)
	p.setString("contractSlug", q.ContractSlug)
	p.setIntPtr("limit", q.Limit)
	p.setString("before", q.Before)
	p.setString("after", q.After)
	p.setString("kinds", string(q.Kinds))
	p.setString("order", string(q.Order))
	return p
}

// CommentsQuery lists comments on a market.
type CommentsQuery struct {
	ContractID   string
	ContractSlug string
	Limit        *int
	Page         *int
	UserID       string
}

// Payload renders the query parameters.
func (q CommentsQuery) Payload() Payload {
	p := Payload{}
	p.setString("contractId", q.ContractID)
	p.setString("contractSlug", q.ContractSlug)
	p.setIntPtr("limit", q.Limit)
	p.setIntPtr("page", q.Page)
	p.setString("userId", q.UserID)
	return p
}

// UsersQuery lists users.
type UsersQuery struct {
	Limit *int
	// Before is a user ID cursor.
	Before string
}

// Payload renders the query parameters.
func (q UsersQuery) Payload() Payload {
	p := Payload{}
	p.setIntPtr("limit", q.Limit)
	p.setString("before", q.Before)
	return p
}

// GroupsQuery lists topics.
type GroupsQuery struct {
	// BeforeTime restricts to groups created before this instant.
	BeforeTime *time.Time
	// AvailableToUserID restricts to groups the user can see.
	AvailableToUserID string
}

// Payload renders the query parameters.
func (q GroupsQuery) Payload() Payload {
	p := Payload{}
	p.setTime("beforeTime", q.BeforeTime)
	p.setString("availableToUserId", q.AvailableToUserID)
	return p
}

// PositionsQuery lists user positions on a market.
type PositionsQuery struct {
	Order PositionSort
	// Top and Bottom cap how many positions from each end are returned.
	Top    *int
	Bottom *int
	UserID string
}

// Payload renders the query parameters.
func (q PositionsQuery) Payload() Payload {
	p := Payload{}
	p.setString("order", string(q.Order))
	p.setIntPtr("top", q.Top)
	p.setIntPtr("bottom", q.Bottom)
	p.setString("userId", q.UserID)
	return p
}

// ManagramsQuery lists mana transfers between users.
type ManagramsQuery struct {
	ToID   string
	FromID string
	Limit  *int
	// Before and After bound the transfer creation time.
	Before *time.Time
	After  *time.Time
}

// Payload renders the query parameters.
func (q ManagramsQuery) Payload() Payload {
	p := Payload{}
	p.setString("toId", q.ToID)
	p.setString("fromId", q.FromID)
	p.setIntPtr("limit", q.Limit)
	p.setTime("before", q.Before)
	p.setTime("after", q.After)
	return p
}

// LeaguesQuery lists league standings.
type LeaguesQuery struct {
	UserID string
	Season *int
	Cohort string
}

// Payload renders the query parameters.
func (q LeaguesQuery) Payload() Payload {
	p := Payload{}
	p.setString("userId", q.UserID)
	p.setIntPtr("season", q.Season)
	p.setString("cohort", q.Cohort)
	return p
}

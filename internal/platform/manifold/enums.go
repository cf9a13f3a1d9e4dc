package manifold

import "fmt"

// The enum types below are closed sets of wire tokens. The typed constants
// are the only valid values; Parse* constructors turn untrusted input into a
// typed value and fail with ErrInvalidEnumValue for anything else. Serialized
// output always carries the wire token, never a symbolic name.

// OutcomeType is the discriminator identifying which member of the
// market-creation family a payload represents.
type OutcomeType string

const (
	OutcomeTypeBinary           OutcomeType = "BINARY"
	OutcomeTypePseudoNumeric    OutcomeType = "PSEUDO_NUMERIC"
	OutcomeTypeMultipleChoice   OutcomeType = "MULTIPLE_CHOICE"
	OutcomeTypePoll             OutcomeType = "POLL"
	OutcomeTypeBountiedQuestion OutcomeType = "BOUNTIED_QUESTION"
)

// ParseOutcomeType converts a wire token into an OutcomeType.
func ParseOutcomeType(s string) (OutcomeType, error) {
	switch OutcomeType(s) {
	case OutcomeTypeBinary, OutcomeTypePseudoNumeric, OutcomeTypeMultipleChoice,
		OutcomeTypePoll, OutcomeTypeBountiedQuestion:
		return OutcomeType(s), nil
	}
	return "", fmt.Errorf("manifold: outcome type %q: %w", s, ErrInvalidEnumValue)
}

// Visibility controls whether a created market is listed publicly.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
)

// ParseVisibility converts a wire token into a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityUnlisted:
		return Visibility(s), nil
	}
	return "", fmt.Errorf("manifold: visibility %q: %w", s, ErrInvalidEnumValue)
}

// DescriptionFormat tags a market description with its encoding. The tag is
// itself the wire FIELD NAME carrying the content, not a field value.
type DescriptionFormat string

const (
	DescriptionHTML     DescriptionFormat = "descriptionHTML"
	DescriptionMarkdown DescriptionFormat = "descriptionMarkdown"
	DescriptionJSON     DescriptionFormat = "descriptionJSON"
)

// ParseDescriptionFormat converts a wire token into a DescriptionFormat.
func ParseDescriptionFormat(s string) (DescriptionFormat, error) {
	switch DescriptionFormat(s) {
	case DescriptionHTML, DescriptionMarkdown, DescriptionJSON:
		return DescriptionFormat(s), nil
	}
	return "", fmt.Errorf("manifold: description format %q: %w", s, ErrInvalidEnumValue)
}

// CommentFormat tags a comment body with its encoding. Like
// DescriptionFormat, the tag names the wire field carrying the content.
type CommentFormat string

const (
	CommentContent  CommentFormat = "content"
	CommentHTML     CommentFormat = "html"
	CommentMarkdown CommentFormat = "markdown"
)

// ParseCommentFormat converts a wire token into a CommentFormat.
func ParseCommentFormat(s string) (CommentFormat, error) {
	switch CommentFormat(s) {
	case CommentContent, CommentHTML, CommentMarkdown:
		return CommentFormat(s), nil
	}
	return "", fmt.Errorf("manifold: comment format %q: %w", s, ErrInvalidEnumValue)
}

// AddAnswersMode controls who may add answers to a multiple-choice market.
//
// Each member has a distinct wire token. One upstream client revision mapped
// ANYONE onto "DISABLED"; that collapse contradicts the Manifold API docs and
// is not reproduced here.
type AddAnswersMode string

const (
	AddAnswersDisabled     AddAnswersMode = "DISABLED"
	AddAnswersOnlyCreators AddAnswersMode = "ONLY_CREATORS"
	AddAnswersAnyone       AddAnswersMode = "ANYONE"
)

// ParseAddAnswersMode converts a wire token into an AddAnswersMode.
func ParseAddAnswersMode(s string) (AddAnswersMode, error) {
	switch AddAnswersMode(s) {
	case AddAnswersDisabled, AddAnswersOnlyCreators, AddAnswersAnyone:
		return AddAnswersMode(s), nil
	}
	return "", fmt.Errorf("manifold: add-answers mode %q: %w", s, ErrInvalidEnumValue)
}

// BetOutcome is the side of a binary bet.
type BetOutcome string

const (
	OutcomeYes BetOutcome = "YES"
	OutcomeNo  BetOutcome = "NO"
)

// ParseBetOutcome converts a wire token into a BetOutcome.
func ParseBetOutcome(s string) (BetOutcome, error) {
	switch BetOutcome(s) {
	case OutcomeYes, OutcomeNo:
		return BetOutcome(s), nil
	}
	return "", fmt.Errorf("manifold: bet outcome %q: %w", s, ErrInvalidEnumValue)
}

// BinaryResolution is the outcome a binary market resolves to.
type BinaryResolution string

const (
	ResolveYes    BinaryResolution = "YES"
	ResolveNo     BinaryResolution = "NO"
	ResolveMkt    BinaryResolution = "MKT"
	ResolveCancel BinaryResolution = "CANCEL"
)

// ParseBinaryResolution converts a wire token into a BinaryResolution.
func ParseBinaryResolution(s string) (BinaryResolution, error) {
	switch BinaryResolution(s) {
	case ResolveYes, ResolveNo, ResolveMkt, ResolveCancel:
		return BinaryResolution(s), nil
	}
	return "", fmt.Errorf("manifold: binary resolution %q: %w", s, ErrInvalidEnumValue)
}

// ChoiceResolutionOutcome is the non-index outcome of a multiple-choice
// resolution: resolve to market probabilities or cancel.
type ChoiceResolutionOutcome string

const (
	ChoiceResolveMkt    ChoiceResolutionOutcome = "MKT"
	ChoiceResolveCancel ChoiceResolutionOutcome = "CANCEL"
)

// ParseChoiceResolutionOutcome converts a wire token into a
// ChoiceResolutionOutcome.
func ParseChoiceResolutionOutcome(s string) (ChoiceResolutionOutcome, error) {
	switch ChoiceResolutionOutcome(s) {
	case ChoiceResolveMkt, ChoiceResolveCancel:
		return ChoiceResolutionOutcome(s), nil
	}
	return "", fmt.Errorf("manifold: choice resolution %q: %w", s, ErrInvalidEnumValue)
}

// MarketSort is the timestamp used to order market listings.
type MarketSort string

const (
	SortCreatedTime     MarketSort = "created-time"
	SortUpdatedTime     MarketSort = "updated-time"
	SortLastBetTime     MarketSort = "last-bet-time"
	SortLastCommentTime MarketSort = "last-comment-time"
)

// ParseMarketSort converts a wire token into a MarketSort.
func ParseMarketSort(s string) (MarketSort, error) {
	switch MarketSort(s) {
	case SortCreatedTime, SortUpdatedTime, SortLastBetTime, SortLastCommentTime:
		return MarketSort(s), nil
	}
	return "", fmt.Errorf("manifold: market sort %q: %w", s, ErrInvalidEnumValue)
}

// SortOrder is the direction of an ordered listing.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortOrder converts a wire token into a SortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case OrderAsc, OrderDesc:
		return SortOrder(s), nil
	}
	return "", fmt.Errorf("manifold: sort order %q: %w", s, ErrInvalidEnumValue)
}

// SearchSort ranks full-text market search results.
type SearchSort string

const (
	SearchSortScore     SearchSort = "score"
	SearchSortNewest    SearchSort = "newest"
	SearchSortLiquidity SearchSort = "liquidity"
)

// ParseSearchSort converts a wire token into a SearchSort.
func ParseSearchSort(s string) (SearchSort, error) {
	switch SearchSort(s) {
	case SearchSortScore, SearchSortNewest, SearchSortLiquidity:
		return SearchSort(s), nil
	}
	return "", fmt.Errorf("manifold: search sort %q: %w", s, ErrInvalidEnumValue)
}

// SearchFilter restricts market search results by lifecycle state.
type SearchFilter string

const (
	FilterAll              SearchFilter = "all"
	FilterOpen             SearchFilter = "open"
	FilterClosed           SearchFilter = "closed"
	FilterResolved         SearchFilter = "resolved"
	FilterClosingThisMonth SearchFilter = "closing-this-month"
	FilterClosingNextMonth SearchFilter = "closing-next-month"
)

// ParseSearchFilter converts a wire token into a SearchFilter.
func ParseSearchFilter(s string) (SearchFilter, error) {
	switch SearchFilter(s) {
	case FilterAll, FilterOpen, FilterClosed, FilterResolved,
		FilterClosingThisMonth, FilterClosingNextMonth:
		return SearchFilter(s), nil
	}
	return "", fmt.Errorf("manifold: search filter %q: %w", s, ErrInvalidEnumValue)
}

// ContractType restricts market search results by market mechanism.
type ContractType string

const (
	ContractAll            ContractType = "ALL"
	ContractBinary         ContractType = "BINARY"
	ContractMultipleChoice ContractType = "MULTIPLE_CHOICE"
	ContractBounty         ContractType = "BOUNTY"
	ContractPoll           ContractType = "POLL"
)

// ParseContractType converts a wire token into a ContractType.
func ParseContractType(s string) (ContractType, error) {
	switch ContractType(s) {
	case ContractAll, ContractBinary, ContractMultipleChoice, ContractBounty, ContractPoll:
		return ContractType(s), nil
	}
	return "", fmt.Errorf("manifold: contract type %q: %w", s, ErrInvalidEnumValue)
}

// PositionSort orders market position listings.
type PositionSort string

const (
	PositionsByShares PositionSort = "shares"
	PositionsByProfit PositionSort = "profit"
)

// ParsePositionSort converts a wire token into a PositionSort.
func ParsePositionSort(s string) (PositionSort, error) {
	switch PositionSort(s) {
	case PositionsByShares, PositionsByProfit:
		return PositionSort(s), nil
	}
	return "", fmt.Errorf("manifold: position sort %q: %w", s, ErrInvalidEnumValue)
}

// BetKinds filters bet listings to a bet subtype.
type BetKinds string

// BetKindsOpenLimit is the only bet subtype the listing endpoint accepts.
const BetKindsOpenLimit BetKinds = "open-limit"

// ParseBetKinds converts a wire token into a BetKinds.
func ParseBetKinds(s string) (BetKinds, error) {
	if BetKinds(s) == BetKindsOpenLimit {
		return BetKindsOpenLimit, nil
	}
	return "", fmt.Errorf("manifold: bet kinds %q: %w", s, ErrInvalidEnumValue)
}

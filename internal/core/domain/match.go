package domain

import "time"

// PairType identifies a pair of entity types the matcher links.
type PairType string

// Supported match pairs. The source side is listed first.
const (
	// PairPricesProducts links price rows to catalogue articles.
	PairPricesProducts PairType = "prices_products"

	// PairInvoicesOrders links invoices to the orders they bill.
	PairInvoicesOrders PairType = "invoices_orders"

	// PairDeliveryNotesOrders links delivery notes to the orders they ship.
	PairDeliveryNotesOrders PairType = "deliverynotes_orders"
)

// AllPairTypes returns every match pair.
func AllPairTypes() []PairType {
	return []PairType{PairPricesProducts, PairInvoicesOrders, PairDeliveryNotesOrders}
}

// IsValid returns true if the pair is recognised.
func (p PairType) IsValid() bool {
	switch p {
	case PairPricesProducts, PairInvoicesOrders, PairDeliveryNotesOrders:
		return true
	default:
		return false
	}
}

// Source returns the entity type on the source side of the pair.
func (p PairType) Source() EntityType {
	switch p {
	case PairPricesProducts:
		return EntityPrices
	case PairInvoicesOrders:
		return EntityInvoices
	case PairDeliveryNotesOrders:
		return EntityDeliveryNotes
	default:
		return ""
	}
}

// Target returns the entity type on the target side of the pair.
func (p PairType) Target() EntityType {
	switch p {
	case PairPricesProducts:
		return EntityProducts
	case PairInvoicesOrders, PairDeliveryNotesOrders:
		return EntityOrders
	default:
		return ""
	}
}

// PairsFor returns the pairs that involve the entity type on either side.
func PairsFor(t EntityType) []PairType {
	var pairs []PairType
	for _, p := range AllPairTypes() {
		if p.Source() == t || p.Target() == t {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// ParsePairType converts a user-supplied name to a PairType.
func ParsePairType(s string) (PairType, error) {
	p := PairType(s)
	if !p.IsValid() {
		return "", ErrUnknownPair
	}
	return p, nil
}

// MatchStrategy names the tier that produced an association.
type MatchStrategy string

// Match strategies, strongest first.
const (
	StrategyExactKey     MatchStrategy = "exact_key"
	StrategyCompositeKey MatchStrategy = "composite_key_fallback"
	StrategyProximity    MatchStrategy = "proximity"
	StrategyManual       MatchStrategy = "manual"
)

// CreatedBy distinguishes matcher output from operator overrides.
type CreatedBy string

// Association origins.
const (
	CreatedByAuto   CreatedBy = "auto"
	CreatedByManual CreatedBy = "manual"
)

// MatchAssociation is a scored link between a source and a target record.
// The triple (Pair, SourceKey, TargetKey) is unique.
type MatchAssociation struct {
	// ID is the unique identifier (UUID).
	ID string

	// Pair identifies the entity types involved.
	Pair PairType

	// SourceKey is the natural key of the source record.
	SourceKey string

	// TargetKey is the natural key of the target record.
	TargetKey string

	// Confidence is in [0, 1].
	Confidence float64

	// Strategy is the tier that produced the link.
	Strategy MatchStrategy

	// CreatedBy is auto for matcher output, manual for operator links.
	CreatedBy CreatedBy

	// LowConfidence flags candidates that tied on the best score.
	LowConfidence bool

	// CreatedAt is when the association was first written.
	CreatedAt time.Time

	// UpdatedAt is when the association was last written.
	UpdatedAt time.Time
}

// IsManual returns true for operator-created associations.
func (a *MatchAssociation) IsManual() bool {
	return a.CreatedBy == CreatedByManual
}

// UnmatchedReason explains why a source record has no association.
type UnmatchedReason string

// Unmatched reasons.
const (
	ReasonNoCandidate UnmatchedReason = "no_candidate"
	ReasonAmbiguous   UnmatchedReason = "ambiguous"
)

// UnmatchedRecord is a source record the matcher could not link.
type UnmatchedRecord struct {
	// SourceKey is the natural key of the source record.
	SourceKey string

	// Reason is no_candidate or ambiguous.
	Reason UnmatchedReason

	// Candidates lists the target keys that tied, for ambiguous results.
	Candidates []string

	// Detail is a short human-readable explanation.
	Detail string
}

// MatchResult summarises one matcher run for a pair.
type MatchResult struct {
	// Pair is the pair that was matched.
	Pair PairType

	// Matched holds every association written or confirmed by the run.
	Matched []MatchAssociation

	// Unmatched holds the source records left without a link.
	Unmatched []UnmatchedRecord

	// Created counts associations inserted by the run.
	Created int

	// Updated counts associations that already existed.
	Updated int

	// Preserved counts source records left alone because of a manual override.
	Preserved int

	// Removed counts automatic associations dropped because the records
	// they linked no longer match.
	Removed int
}

// LowConfidence returns the matched associations flagged for review.
func (r *MatchResult) LowConfidence() []MatchAssociation {
	var out []MatchAssociation
	for _, a := range r.Matched {
		if a.LowConfidence {
			out = append(out, a)
		}
	}
	return out
}

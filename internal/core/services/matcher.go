package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
	"github.com/archibald-labs/archisync/internal/core/ports/driving"
	"github.com/archibald-labs/archisync/internal/logger"
	"github.com/archibald-labs/archisync/internal/normalisers/italian"
)

// Ensure MatcherService implements the interface.
var _ driving.Matcher = (*MatcherService)(nil)

// Confidence of each automatic tier.
const (
	confidenceExact     = 1.0
	confidenceComposite = 0.8
)

// MatcherService links records across entity types in three tiers:
// exact key, composite variant key, then date proximity.
type MatcherService struct {
	records  driven.RecordStore
	matches  driven.MatchStore
	settings domain.MatchSettings
}

// NewMatcherService creates a matcher.
func NewMatcherService(
	records driven.RecordStore,
	matches driven.MatchStore,
	settings domain.MatchSettings,
) *MatcherService {
	if settings.WindowDays <= 0 {
		settings.WindowDays = domain.DefaultWindowDays
	}
	if settings.VariantCodes == nil {
		settings.VariantCodes = domain.DefaultVariantCodes()
	}
	return &MatcherService{
		records:  records,
		matches:  matches,
		settings: settings,
	}
}

// candidate is one proposed target for a source record.
type candidate struct {
	target     string
	confidence float64
	strategy   domain.MatchStrategy
	low        bool
}

// proposal is the outcome of matching one source record.
type proposal struct {
	candidates []candidate
	unmatched  *domain.UnmatchedRecord
}

// Match runs every tier for a pair and persists the associations.
//
// Sources with a manual association are left untouched. For the others,
// automatic associations are upserted and any automatic association no
// longer proposed is removed, so re-running on unchanged data is a no-op.
// Automatic associations of source records that no longer exist are
// removed too; manual ones are kept. Every removal is counted in Removed.
// Matched holds the associations as stored.
func (m *MatcherService) Match(ctx context.Context, pair domain.PairType) (*domain.MatchResult, error) {
	if !pair.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPair, pair)
	}

	sources, err := m.records.List(ctx, pair.Source(), domain.RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", pair.Source(), err)
	}
	targets, err := m.records.List(ctx, pair.Target(), domain.RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", pair.Target(), err)
	}
	existing, err := m.matches.List(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("list associations: %w", err)
	}

	bySource := make(map[string][]domain.MatchAssociation)
	for _, a := range existing {
		bySource[a.SourceKey] = append(bySource[a.SourceKey], a)
	}

	propose := m.proposer(pair, targets)
	result := &domain.MatchResult{Pair: pair}

	for i := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src := &sources[i]

		if hasManual(bySource[src.Key]) {
			result.Preserved++
			continue
		}

		p := propose(src)
		if p.unmatched != nil {
			result.Unmatched = append(result.Unmatched, *p.unmatched)
		}

		keep := make(map[string]bool, len(p.candidates))
		for _, c := range p.candidates {
			keep[c.target] = true
			assoc := &domain.MatchAssociation{
				ID:            uuid.New().String(),
				Pair:          pair,
				SourceKey:     src.Key,
				TargetKey:     c.target,
				Confidence:    c.confidence,
				Strategy:      c.strategy,
				CreatedBy:     domain.CreatedByAuto,
				LowConfidence: c.low,
			}
			inserted, err := m.matches.Upsert(ctx, assoc)
			if err != nil {
				return nil, fmt.Errorf("upsert association: %w", err)
			}
			if inserted {
				result.Created++
			} else {
				result.Updated++
			}
			stored, err := m.matches.Get(ctx, pair, src.Key, c.target)
			if err != nil {
				return nil, fmt.Errorf("get association: %w", err)
			}
			result.Matched = append(result.Matched, *stored)
		}

		for _, old := range bySource[src.Key] {
			if keep[old.TargetKey] {
				continue
			}
			if err := m.matches.Delete(ctx, pair, old.SourceKey, old.TargetKey); err != nil {
				return nil, fmt.Errorf("delete association: %w", err)
			}
			result.Removed++
		}
	}

	present := make(map[string]bool, len(sources))
	for i := range sources {
		present[sources[i].Key] = true
	}
	for _, a := range existing {
		if present[a.SourceKey] || a.IsManual() {
			continue
		}
		if err := m.matches.Delete(ctx, pair, a.SourceKey, a.TargetKey); err != nil {
			return nil, fmt.Errorf("delete association: %w", err)
		}
		result.Removed++
	}

	logger.Info("match %s: %d associations (%d new), %d unmatched, %d preserved, %d removed",
		pair, len(result.Matched), result.Created, len(result.Unmatched), result.Preserved, result.Removed)
	return result, nil
}

// Associations returns the associations of a source record, best first.
func (m *MatcherService) Associations(
	ctx context.Context,
	pair domain.PairType,
	sourceKey string,
) ([]domain.MatchAssociation, error) {
	if !pair.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPair, pair)
	}
	return m.matches.ListBySource(ctx, pair, sourceKey)
}

// AssociationsForTarget returns the associations pointing at a target record.
func (m *MatcherService) AssociationsForTarget(
	ctx context.Context,
	pair domain.PairType,
	targetKey string,
) ([]domain.MatchAssociation, error) {
	if !pair.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPair, pair)
	}
	return m.matches.ListByTarget(ctx, pair, targetKey)
}

// LinkManual records an operator association. It supersedes any automatic
// association of the same pair of records, and from then on the matcher
// leaves the source record alone.
func (m *MatcherService) LinkManual(
	ctx context.Context,
	pair domain.PairType,
	sourceKey, targetKey string,
) (*domain.MatchAssociation, error) {
	if !pair.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPair, pair)
	}
	if _, err := m.records.Get(ctx, pair.Source(), sourceKey); err != nil {
		return nil, fmt.Errorf("get %s %s: %w", pair.Source(), sourceKey, err)
	}
	if _, err := m.records.Get(ctx, pair.Target(), targetKey); err != nil {
		return nil, fmt.Errorf("get %s %s: %w", pair.Target(), targetKey, err)
	}

	assoc := &domain.MatchAssociation{
		ID:         uuid.New().String(),
		Pair:       pair,
		SourceKey:  sourceKey,
		TargetKey:  targetKey,
		Confidence: 1,
		Strategy:   domain.StrategyManual,
		CreatedBy:  domain.CreatedByManual,
	}
	if _, err := m.matches.Upsert(ctx, assoc); err != nil {
		return nil, fmt.Errorf("upsert association: %w", err)
	}
	return m.matches.Get(ctx, pair, sourceKey, targetKey)
}

// UnlinkManual removes an operator association. Automatic associations
// are owned by the matcher and cannot be unlinked.
func (m *MatcherService) UnlinkManual(ctx context.Context, pair domain.PairType, sourceKey, targetKey string) error {
	if !pair.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownPair, pair)
	}
	assoc, err := m.matches.Get(ctx, pair, sourceKey, targetKey)
	if err != nil {
		return err
	}
	if !assoc.IsManual() {
		return fmt.Errorf("%w: %s -> %s", domain.ErrNotManual, sourceKey, targetKey)
	}
	return m.matches.Delete(ctx, pair, sourceKey, targetKey)
}

// proposer builds the target index of a pair and returns the function
// that proposes candidates for one source record.
func (m *MatcherService) proposer(pair domain.PairType, targets []domain.StoredRecord) func(*domain.StoredRecord) proposal {
	switch pair {
	case domain.PairPricesProducts:
		idx := newProductIndex(targets)
		return func(price *domain.StoredRecord) proposal {
			return m.matchPrice(idx, price)
		}
	case domain.PairInvoicesOrders:
		idx := newOrderIndex(targets, domain.FieldOrderCreationDate)
		return func(inv *domain.StoredRecord) proposal {
			return m.matchToOrder(idx, inv, domain.FieldInvoiceOrder, domain.FieldInvoiceCustomer, domain.FieldInvoiceDate)
		}
	default:
		idx := newOrderIndex(targets, domain.FieldOrderDeliveryDate, domain.FieldOrderCreationDate)
		return func(note *domain.StoredRecord) proposal {
			return m.matchToOrder(idx, note, domain.FieldDeliveryNoteOrder, domain.FieldDeliveryNoteCustomer, domain.FieldDeliveryNoteDate)
		}
	}
}

// ==================== Prices -> Products ====================

type productIndex struct {
	keys   []string // sorted
	byKey  map[string]*domain.StoredRecord
	byName map[string][]string
}

func newProductIndex(products []domain.StoredRecord) *productIndex {
	idx := &productIndex{
		keys:   make([]string, 0, len(products)),
		byKey:  make(map[string]*domain.StoredRecord, len(products)),
		byName: make(map[string][]string),
	}
	for i := range products {
		p := &products[i]
		idx.keys = append(idx.keys, p.Key)
		idx.byKey[p.Key] = p
		if name := foldKey(p.Fields.Get(domain.FieldProductName)); name != "" {
			idx.byName[name] = append(idx.byName[name], p.Key)
		}
	}
	sort.Strings(idx.keys)
	return idx
}

// withPrefix returns the product keys starting with prefix.
func (idx *productIndex) withPrefix(prefix string) []string {
	var out []string
	for i := sort.SearchStrings(idx.keys, prefix); i < len(idx.keys); i++ {
		if !strings.HasPrefix(idx.keys[i], prefix) {
			break
		}
		out = append(out, idx.keys[i])
	}
	return out
}

// matchPrice links a price row to the article variant it prices.
//
// Tier 1 matches the article id exactly. Tier 2 collects the variants of
// the base article (id prefix or same name); a variant whose configuration
// id equals the item selection code wins outright, otherwise the code is
// mapped to package units and compared with the variant's package content.
func (m *MatcherService) matchPrice(idx *productIndex, price *domain.StoredRecord) proposal {
	productID := price.Fields.Get(domain.FieldPriceProductID)
	selection := strings.ToUpper(price.Fields.Get(domain.FieldPriceItemSelection))

	if _, ok := idx.byKey[productID]; ok && productID != "" {
		return proposal{candidates: []candidate{{
			target: productID, confidence: confidenceExact, strategy: domain.StrategyExactKey,
		}}}
	}

	seen := make(map[string]bool)
	var variants []string
	add := func(keys []string) {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				variants = append(variants, k)
			}
		}
	}
	if productID != "" {
		add(idx.withPrefix(productID))
	}
	if name := foldKey(price.Fields.Get(domain.FieldPriceProductName)); name != "" {
		add(idx.byName[name])
	}
	sort.Strings(variants)

	if len(variants) == 0 {
		return unmatched(price.Key, domain.ReasonNoCandidate, nil,
			fmt.Sprintf("no article %q or variant of it", productID))
	}

	survivors := variants
	if selection != "" {
		var byConfig []string
		for _, k := range variants {
			if strings.EqualFold(idx.byKey[k].Fields.Get(domain.FieldProductVariantCode), selection) {
				byConfig = append(byConfig, k)
			}
		}

		switch units, known := m.settings.VariantCodes[selection]; {
		case len(byConfig) > 0:
			survivors = byConfig
		case known:
			survivors = nil
			for _, k := range variants {
				if n, ok := leadingInt(idx.byKey[k].Fields.Get(domain.FieldProductPackage)); ok && n == units {
					survivors = append(survivors, k)
				}
			}
		}
	}

	switch len(survivors) {
	case 0:
		return unmatched(price.Key, domain.ReasonNoCandidate, nil,
			fmt.Sprintf("no variant of %q matches selection %q", productID, selection))
	case 1:
		return proposal{candidates: []candidate{{
			target: survivors[0], confidence: confidenceComposite, strategy: domain.StrategyCompositeKey,
		}}}
	default:
		return unmatched(price.Key, domain.ReasonAmbiguous, survivors,
			fmt.Sprintf("%d variants match selection %q", len(survivors), selection))
	}
}

// ==================== Invoices / Delivery notes -> Orders ====================

type datedOrder struct {
	key  string
	date time.Time
}

type orderIndex struct {
	byNumber   map[string][]string
	byCustomer map[string][]datedOrder
}

// newOrderIndex indexes orders by number and by customer. The proximity
// date is the first non-empty of dateFields.
func newOrderIndex(orders []domain.StoredRecord, dateFields ...string) *orderIndex {
	idx := &orderIndex{
		byNumber:   make(map[string][]string),
		byCustomer: make(map[string][]datedOrder),
	}
	for i := range orders {
		o := &orders[i]
		if num := foldKey(o.Fields.Get(domain.FieldOrderNumber)); num != "" {
			idx.byNumber[num] = append(idx.byNumber[num], o.Key)
		}

		customer := foldKey(o.Fields.Get(domain.FieldOrderCustomer))
		if customer == "" {
			continue
		}
		for _, f := range dateFields {
			if d, ok := italian.ParseISO(o.Fields.Get(f)); ok {
				idx.byCustomer[customer] = append(idx.byCustomer[customer], datedOrder{key: o.Key, date: d})
				break
			}
		}
	}
	return idx
}

// matchToOrder links a document to the orders it refers to: by order number
// when present, otherwise every order of the same customer strictly inside
// the proximity window, scored 1 - delta/window.
func (m *MatcherService) matchToOrder(
	idx *orderIndex,
	doc *domain.StoredRecord,
	orderField, customerField, dateField string,
) proposal {
	number := doc.Fields.Get(orderField)
	if keys := idx.byNumber[foldKey(number)]; len(keys) > 0 && number != "" {
		cands := make([]candidate, 0, len(keys))
		for _, k := range keys {
			cands = append(cands, candidate{target: k, confidence: confidenceExact, strategy: domain.StrategyExactKey})
		}
		return proposal{candidates: cands}
	}

	customer := doc.Fields.Get(customerField)
	date, ok := italian.ParseISO(doc.Fields.Get(dateField))
	if customer == "" || !ok {
		return unmatched(doc.Key, domain.ReasonNoCandidate, nil,
			fmt.Sprintf("no order %q and no customer/date to match by proximity", number))
	}

	window := m.settings.Window()
	type scored struct {
		key   string
		delta time.Duration
	}
	var near []scored
	for _, o := range idx.byCustomer[foldKey(customer)] {
		delta := o.date.Sub(date)
		if delta < 0 {
			delta = -delta
		}
		if delta < window {
			near = append(near, scored{key: o.key, delta: delta})
		}
	}
	if len(near) == 0 {
		return unmatched(doc.Key, domain.ReasonNoCandidate, nil,
			fmt.Sprintf("no order of %s within %d days", customer, m.settings.WindowDays))
	}

	sort.Slice(near, func(i, j int) bool {
		if near[i].delta != near[j].delta {
			return near[i].delta < near[j].delta
		}
		return near[i].key < near[j].key
	})

	ties := 0
	for _, n := range near {
		if n.delta == near[0].delta {
			ties++
		}
	}

	cands := make([]candidate, 0, len(near))
	for _, n := range near {
		cands = append(cands, candidate{
			target:     n.key,
			confidence: 1 - float64(n.delta)/float64(window),
			strategy:   domain.StrategyProximity,
			low:        ties > 1 && n.delta == near[0].delta,
		})
	}
	return proposal{candidates: cands}
}

// ==================== Helpers ====================

func unmatched(key string, reason domain.UnmatchedReason, candidates []string, detail string) proposal {
	return proposal{unmatched: &domain.UnmatchedRecord{
		SourceKey:  key,
		Reason:     reason,
		Candidates: candidates,
		Detail:     detail,
	}}
}

func hasManual(assocs []domain.MatchAssociation) bool {
	for i := range assocs {
		if assocs[i].IsManual() {
			return true
		}
	}
	return false
}

// foldKey normalises identifiers compared across exports.
func foldKey(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// leadingInt parses the integer a package description starts with,
// e.g. "5 colli" -> 5.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == 0 {
		return 0, false
	}
	if end < 0 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}

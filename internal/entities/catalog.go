package entities

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.EntityCatalog = (*Catalog)(nil)

// Catalog holds the validated layout and policy of every entity type.
type Catalog struct {
	layouts   map[domain.EntityType]domain.Layout
	policies  map[domain.EntityType]domain.EntityPolicy
	overrides map[domain.EntityType]domain.EntityOverrides
}

// New builds the catalogue of built-in layouts, applying policy overrides.
func New(overrides map[domain.EntityType]domain.EntityOverrides) (*Catalog, error) {
	c := &Catalog{
		layouts: map[domain.EntityType]domain.Layout{
			domain.EntityCustomers:     customersLayout(),
			domain.EntityProducts:      productsLayout(),
			domain.EntityPrices:        pricesLayout(),
			domain.EntityOrders:        ordersLayout(),
			domain.EntityDeliveryNotes: deliveryNotesLayout(),
			domain.EntityInvoices:      invoicesLayout(),
		},
		policies:  DefaultPolicies(),
		overrides: overrides,
	}

	v := validator.New()
	for _, t := range domain.AllEntityTypes() {
		if err := Validate(v, c.layouts[t], c.policies[t]); err != nil {
			return nil, fmt.Errorf("%s layout: %w", t, err)
		}
	}
	return c, nil
}

// Layout returns the page-cycle layout of an entity type.
func (c *Catalog) Layout(entityType domain.EntityType) (domain.Layout, error) {
	layout, ok := c.layouts[entityType]
	if !ok {
		return domain.Layout{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, entityType)
	}
	return layout, nil
}

// Policy returns the delta-store policy with overrides applied.
func (c *Catalog) Policy(entityType domain.EntityType) (domain.EntityPolicy, error) {
	policy, ok := c.policies[entityType]
	if !ok {
		return domain.EntityPolicy{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, entityType)
	}
	if o, ok := c.overrides[entityType]; ok {
		policy = o.ApplyTo(policy)
	}
	return policy, nil
}

// Validate checks a layout's struct constraints and its cross-field rules:
// unique field names, pages inside the cycle, known JoinWith targets, and a
// policy whose key and significant fields exist in the layout.
func Validate(v *validator.Validate, layout domain.Layout, policy domain.EntityPolicy) error {
	if err := v.Struct(layout); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	names := make(map[string]bool, len(layout.Fields))
	for _, f := range layout.Fields {
		if names[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", domain.ErrInvalidInput, f.Name)
		}
		names[f.Name] = true
		if f.Page >= layout.PagesPerCycle {
			return fmt.Errorf("%w: field %q on page %d outside a %d-page cycle",
				domain.ErrInvalidInput, f.Name, f.Page, layout.PagesPerCycle)
		}
		if len(f.Headers) == 0 && f.Index < 0 {
			return fmt.Errorf("%w: field %q has neither headers nor index", domain.ErrInvalidInput, f.Name)
		}
		if !f.Kind.IsValid() {
			return fmt.Errorf("%w: field %q has unknown kind %q", domain.ErrInvalidInput, f.Name, f.Kind)
		}
	}
	for _, f := range layout.Fields {
		if f.JoinWith != "" && !names[f.JoinWith] {
			return fmt.Errorf("%w: field %q joins unknown field %q", domain.ErrInvalidInput, f.Name, f.JoinWith)
		}
	}

	if !names[policy.KeyField] {
		return fmt.Errorf("%w: key field %q not in layout", domain.ErrInvalidInput, policy.KeyField)
	}
	for _, s := range policy.SignificantFields {
		if !names[s] {
			return fmt.Errorf("%w: significant field %q not in layout", domain.ErrInvalidInput, s)
		}
	}
	return nil
}

package records

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gcmn-library/backend/internal/store"
	pkgerrors "github.com/gcmn-library/backend/pkg/errors"
)

// Repository is a spec-driven gateway to one entity's table. Every read
// returns application-shaped records; every write accepts them.
type Repository struct {
	store *store.Client
	spec  Spec
}

// NewRepository binds a repository to a store client and an entity spec.
func NewRepository(st *store.Client, spec Spec) *Repository {
	return &Repository{store: st, spec: spec}
}

// Spec exposes the entity spec the repository was built with.
func (r *Repository) Spec() Spec {
	return r.spec
}

// Eq builds an equality filter keyed by application field name.
func (r *Repository) Eq(field string, value any) store.Filter {
	return store.Eq(ColumnFor(field), value)
}

// ILike builds a case-insensitive filter keyed by application field name.
func (r *Repository) ILike(field string, value any) store.Filter {
	return store.ILike(ColumnFor(field), value)
}

// OrderBy builds an ordering term keyed by application field name.
func (r *Repository) OrderBy(field string, descending bool) store.Order {
	return store.Order{Column: ColumnFor(field), Descending: descending}
}

// Get fetches one record by id. Absence is reported through the boolean,
// not an error.
func (r *Repository) Get(ctx context.Context, id string) (Record, bool, error) {
	return r.GetBy(ctx, r.Eq("id", id))
}

// GetBy fetches at most one record matching the filters.
func (r *Repository) GetBy(ctx context.Context, filters ...store.Filter) (Record, bool, error) {
	row, found, err := r.store.SelectOne(ctx, r.spec.Table, r.spec.Columns(), filters)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	return r.spec.FromStore(row), true, nil
}

// List fetches every record matching the filters, in the given order.
func (r *Repository) List(ctx context.Context, filters []store.Filter, orders ...store.Order) ([]Record, error) {
	rows, err := r.store.Select(ctx, r.spec.Table, r.spec.Columns(), filters, orders)
	if err != nil {
		return nil, err
	}
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = r.spec.FromStore(row)
	}
	return out, nil
}

// Create inserts the record and returns it as stored, store defaults
// included. An id is assigned when the caller does not provide one.
func (r *Repository) Create(ctx context.Context, rec Record) (Record, error) {
	row := ToStore(rec)
	id, _ := row["id"].(string)
	if id == "" {
		id = uuid.NewString()
		row["id"] = id
	}

	if err := r.store.Insert(ctx, r.spec.Table, row); err != nil {
		return nil, err
	}

	created, found, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeWrite, "created record not readable: "+r.spec.Table)
	}
	return created, nil
}

// Update applies the changes to the record with the given id and returns the
// updated record. Tables carrying updated_at get it stamped.
func (r *Repository) Update(ctx context.Context, id string, changes Record) (Record, error) {
	return r.UpdateBy(ctx, []store.Filter{r.Eq("id", id)}, changes)
}

// UpdateBy applies the changes to the single record matching the filters.
func (r *Repository) UpdateBy(ctx context.Context, filters []store.Filter, changes Record) (Record, error) {
	row := ToStore(changes)
	delete(row, "id")
	delete(row, "created_at")
	if r.spec.HasUpdatedAt {
		row["updated_at"] = time.Now().UTC()
	}

	affected, err := r.store.Update(ctx, r.spec.Table, filters, row)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found: "+r.spec.Table)
	}

	updated, found, err := r.GetBy(ctx, filters...)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found: "+r.spec.Table)
	}
	return updated, nil
}

// Delete removes the record with the given id. Deleting a missing record is
// not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.spec.Table, []store.Filter{r.Eq("id", id)})
}

// DeleteBy removes every record matching the filters.
func (r *Repository) DeleteBy(ctx context.Context, filters ...store.Filter) error {
	return r.store.Delete(ctx, r.spec.Table, filters)
}

// ToggleStatus flips a two-state string field between onValue and offValue.
// Any current value other than onValue flips to onValue. The boolean reports
// whether the record existed; toggling a missing record is not an error.
// stampUpdatedAt controls whether the write also stamps updated_at, since
// not every toggle on a timestamped table historically did.
func (r *Repository) ToggleStatus(ctx context.Context, id, field, onValue, offValue string, stampUpdatedAt bool) (Record, bool, error) {
	row, found, err := r.store.SelectOne(ctx, r.spec.Table, []string{ColumnFor(field)}, []store.Filter{r.Eq("id", id)})
	if err != nil || !found {
		return nil, false, err
	}

	next := onValue
	if current, _ := row[ColumnFor(field)].(string); current == onValue {
		next = offValue
	}

	update := store.Row{ColumnFor(field): next}
	if stampUpdatedAt && r.spec.HasUpdatedAt {
		update["updated_at"] = time.Now().UTC()
	}
	if _, err := r.store.Update(ctx, r.spec.Table, []store.Filter{r.Eq("id", id)}, update); err != nil {
		return nil, false, err
	}

	rec, found, err := r.Get(ctx, id)
	return rec, found, err
}

// ToggleFlag complements a boolean field. The boolean reports whether the
// record existed.
func (r *Repository) ToggleFlag(ctx context.Context, id, field string) (Record, bool, error) {
	row, found, err := r.store.SelectOne(ctx, r.spec.Table, []string{ColumnFor(field)}, []store.Filter{r.Eq("id", id)})
	if err != nil || !found {
		return nil, false, err
	}

	update := store.Row{ColumnFor(field): !asBool(row[ColumnFor(field)])}
	if _, err := r.store.Update(ctx, r.spec.Table, []store.Filter{r.Eq("id", id)}, update); err != nil {
		return nil, false, err
	}

	rec, found, err := r.Get(ctx, id)
	return rec, found, err
}

// asBool normalizes driver-dependent boolean representations.
func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	default:
		return false
	}
}

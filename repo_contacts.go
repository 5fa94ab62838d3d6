package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultContactPageSize caps how many contacts a single listing returns
var DefaultContactPageSize = 100

// ContactFilter narrows a contact listing, every field is optional.
// Name and email filters match as case insensitive substrings.
type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
	Offset    int
	Limit     int
}

// Contacts is the persistence surface for the address book. Every
// operation is scoped to the owning user, a contact id from another
// account resolves to not found.
type Contacts interface {
	ListByUser(ctx context.Context, userID uuid.UUID, filter ContactFilter) ([]*Contact, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Contact, error)
	Create(ctx context.Context, record *Contact) (*Contact, error)
	Update(ctx context.Context, userID uuid.UUID, record *Contact) (*Contact, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (*Contact, error)
	UpcomingBirthdays(ctx context.Context, userID uuid.UUID, from time.Time, days int) ([]*Contact, error)
}

type contactsRepo struct {
	repository.Repository[*Contact]
	db *bun.DB
}

var _ Contacts = (*contactsRepo)(nil)

func NewContactsRepository(db *bun.DB) Contacts {
	repo := repository.NewRepository[*Contact](db, repository.ModelHandlers[*Contact]{
		NewRecord: func() *Contact { return &Contact{} },
		GetID: func(c *Contact) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Contact, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &contactsRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *contactsRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter ContactFilter) ([]*Contact, error) {
	limit := filter.Limit
	if limit <= 0 || limit > DefaultContactPageSize {
		limit = DefaultContactPageSize
	}

	var records []*Contact
	q := a.db.NewSelect().Model(&records).
		Where("?TableAlias.user_id = ?", userID)

	if v := strings.TrimSpace(filter.FirstName); v != "" {
		q = q.Where("LOWER(?TableAlias.first_name) LIKE ?", "%"+strings.ToLower(v)+"%")
	}
	if v := strings.TrimSpace(filter.LastName); v != "" {
		q = q.Where("LOWER(?TableAlias.last_name) LIKE ?", "%"+strings.ToLower(v)+"%")
	}
	if v := strings.TrimSpace(filter.Email); v != "" {
		q = q.Where("LOWER(?TableAlias.email) LIKE ?", "%"+strings.ToLower(v)+"%")
	}

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	err := q.
		Order("last_name ASC", "first_name ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *contactsRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*Contact, error) {
	record := &Contact{}
	err := a.db.NewSelect().Model(record).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *contactsRepo) Create(ctx context.Context, record *Contact) (*Contact, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Email = strings.TrimSpace(strings.ToLower(record.Email))

	return a.Repository.Create(ctx, record)
}

func (a *contactsRepo) Update(ctx context.Context, userID uuid.UUID, record *Contact) (*Contact, error) {
	existing, err := a.GetByID(ctx, userID, record.ID)
	if err != nil {
		return nil, err
	}

	existing.FirstName = record.FirstName
	existing.LastName = record.LastName
	existing.Email = strings.TrimSpace(strings.ToLower(record.Email))
	existing.Phone = record.Phone
	existing.BirthDate = record.BirthDate
	existing.Notes = record.Notes

	return a.Repository.Update(ctx, existing, repository.UpdateByID(existing.ID.String()))
}

func (a *contactsRepo) Delete(ctx context.Context, userID, id uuid.UUID) (*Contact, error) {
	existing, err := a.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if _, err := a.db.NewDelete().Model(existing).WherePK().Exec(ctx); err != nil {
		return nil, err
	}

	return existing, nil
}

func (a *contactsRepo) UpcomingBirthdays(ctx context.Context, userID uuid.UUID, from time.Time, days int) ([]*Contact, error) {
	// month/day window math does not translate across SQL dialects,
	// select the user's contacts and filter here
	var records []*Contact
	err := a.db.NewSelect().Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return FilterUpcomingBirthdays(records, from, days), nil
}

// FilterUpcomingBirthdays keeps the contacts whose birthday, mapped onto
// the current year, lands within days of from.
func FilterUpcomingBirthdays(records []*Contact, from time.Time, days int) []*Contact {
	out := make([]*Contact, 0, len(records))
	for _, c := range records {
		if BirthdayInWindow(c.BirthDate, from, days) {
			out = append(out, c)
		}
	}
	return out
}

// BirthdayInWindow reports whether the month and day of birthday fall
// inside the days long window starting at from, inclusive on both ends.
// The window wraps the year boundary, a late December from still
// catches early January birthdays.
func BirthdayInWindow(birthday, from time.Time, days int) bool {
	if birthday.IsZero() || days < 0 {
		return false
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, days)

	occurrence := time.Date(from.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if !occurrence.Before(start) && !occurrence.After(end) {
		return true
	}

	next := occurrence.AddDate(1, 0, 0)
	return !next.Before(start) && !next.After(end)
}

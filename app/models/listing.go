package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MiguelSanz/Anunzio/internal/pkg/shortener"
)

// Listing status values. Stored as plain strings; consumers must compare
// case-insensitively because legacy rows carry mixed casing.
const (
	ListingStatusDraft    = "draft"
	ListingStatusActive   = "active"
	ListingStatusSold     = "sold"
	ListingStatusArchived = "archived"
	ListingStatusDeleted  = "deleted"
	ListingStatusExpired  = "expired"
)

// Contact method identifiers stored in the contact_methods set.
const (
	ContactMethodChat    = "chat"
	ContactMethodMessage = "message"
	ContactMethodPhone   = "phone"
)

// StringSet is a JSON-backed set of strings. It stores sorted, de-duplicated
// values so repeated writes of the same set produce identical column bytes.
type StringSet []string

// Value implements the driver.Valuer interface
func (s StringSet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSet) Scan(value interface{}) error {
	if value == nil {
		*s = StringSet{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("invalid scan source")
	}
	var out []string
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	*s = StringSet(out)
	return nil
}

// Union returns a new set containing every element of s plus the given
// values. Adding an element that is already present is a no-op, so the
// operation is idempotent.
func (s StringSet) Union(values ...string) StringSet {
	seen := make(map[string]struct{}, len(s)+len(values))
	out := make([]string, 0, len(s)+len(values))
	for _, v := range append(append([]string{}, s...), values...) {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return StringSet(out)
}

// Contains reports whether the set holds the given value.
func (s StringSet) Contains(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, v := range s {
		if v == value {
			return true
		}
	}
	return false
}

type Listing struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UUID        string `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	UserID      uint   `gorm:"index" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title       string `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=3,max=255"`
	Description string `gorm:"type:text" json:"description" validate:"max=5000"`
	Slug        string `gorm:"type:varchar(64) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex" json:"slug"`
	Category    string `gorm:"type:varchar(100);index" json:"category"`
	City        string `gorm:"type:varchar(100)" json:"city"`

	// Monetization state. PlanCode keeps the raw value as it arrived
	// (historical spellings included); PlanCanonical holds the resolved
	// code or empty when resolution failed.
	PlanCode      string `gorm:"type:varchar(100)" json:"plan_code"`
	PlanCanonical string `gorm:"type:varchar(50);index" json:"plan_canonical"`

	// Price in minor currency units. OriginalPrice is set on the first
	// markdown and never decreases afterwards.
	Price         int64  `gorm:"type:bigint;not null" json:"price" validate:"gte=0"`
	OriginalPrice *int64 `gorm:"type:bigint" json:"original_price"`

	Status             string     `gorm:"type:varchar(50);default:'draft';index" json:"status"`
	ExpiresAt          *time.Time `gorm:"type:datetime" json:"expires_at"`
	HighlightExpiresAt *time.Time `gorm:"type:datetime" json:"highlight_expires_at"`

	ContactMethods StringSet `gorm:"type:json" json:"contact_methods"`
	ContactPhone   *string   `gorm:"type:varchar(32)" json:"contact_phone"`

	ViewCount int `gorm:"default:0" json:"view_count"`

	// Bumped on every guarded update; concurrent writers lose the swap.
	LockVersion int `gorm:"default:0" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate fills in identity fields before the row is inserted.
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == "" {
		l.UUID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = ListingStatusDraft
	}
	if l.Slug == "" {
		// Placeholder until AfterCreate can derive a slug from the row ID.
		l.Slug = "temp"
	}
	return nil
}

// AfterCreate derives the public slug from the generated row ID.
func (l *Listing) AfterCreate(tx *gorm.DB) error {
	if l.Slug == "temp" {
		l.Slug = shortener.EncodeID(l.ID)
		return tx.Model(l).Update("slug", l.Slug).Error
	}
	return nil
}

// StatusEquals compares the persisted status case-insensitively.
func (l *Listing) StatusEquals(status string) bool {
	return strings.EqualFold(strings.TrimSpace(l.Status), status)
}

// IsDeleted reports whether the listing has been soft-deleted.
func (l *Listing) IsDeleted() bool {
	return l.StatusEquals(ListingStatusDeleted)
}

// IsExpiredAt reports the derived expired condition: a literal expired
// status, or a set expiry timestamp that is not strictly in the future. A
// nil expiry means the listing never expires. The boundary matches the
// repository visibility scopes: a listing is live only while
// expires_at > now.
func (l *Listing) IsExpiredAt(now time.Time) bool {
	if l.StatusEquals(ListingStatusExpired) {
		return true
	}
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

type Type string

const (
	TypeLager        Type = "LAGER"
	TypeMaltBeverage Type = "MALT_BEVERAGE"
	TypeWitbier      Type = "WITBIER"
	TypeWeiss        Type = "WEISS"
	TypeAle          Type = "ALE"
	TypeIPA          Type = "IPA"
	TypeStout        Type = "STOUT"
)

var typeLabels = map[Type]string{
	TypeLager:        "Lager",
	TypeMaltBeverage: "Malt Beverage",
	TypeWitbier:      "Witbier",
	TypeWeiss:        "Weiss",
	TypeAle:          "Ale",
	TypeIPA:          "IPA",
	TypeStout:        "Stout",
}

// Types lists every known type in declaration order.
func Types() []Type {
	return []Type{TypeLager, TypeMaltBeverage, TypeWitbier, TypeWeiss, TypeAle, TypeIPA, TypeStout}
}

// ParseType returns the Type for tag, or an error if tag is not one of the known types.
func ParseType(tag string) (Type, error) {
	t := Type(tag)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidItem, tag)
	}
	return t, nil
}

func (t Type) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label is the human readable name of the type, empty for unknown tags.
func (t Type) Label() string {
	return typeLabels[t]
}

const (
	MaxNameLength  = 200
	MaxCapacityCap = 500
)

type Item struct {
	ID          int64
	Name        string
	Brand       string
	MaxCapacity int
	Quantity    int
	Type        Type
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks field constraints and the 0 <= Quantity <= MaxCapacity invariant.
func (i Item) Validate() error {
	switch {
	case i.Name == "" || utf8.RuneCountInString(i.Name) > MaxNameLength:
		return fmt.Errorf("%w: name must be 1..%d characters", ErrInvalidItem, MaxNameLength)
	case i.Brand == "" || utf8.RuneCountInString(i.Brand) > MaxNameLength:
		return fmt.Errorf("%w: brand must be 1..%d characters", ErrInvalidItem, MaxNameLength)
	case i.MaxCapacity <= 0 || i.MaxCapacity > MaxCapacityCap:
		return fmt.Errorf("%w: max capacity must be 1..%d", ErrInvalidItem, MaxCapacityCap)
	case i.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidItem)
	case i.Quantity > i.MaxCapacity:
		return fmt.Errorf("%w: quantity %d exceeds max capacity %d", ErrInvalidItem, i.Quantity, i.MaxCapacity)
	case !i.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", ErrInvalidItem, i.Type)
	}
	return nil
}

// CanTake reports whether amount more units fit under MaxCapacity. The bound is inclusive.
// Compared against the remaining headroom so large amounts cannot overflow.
func (i Item) CanTake(amount int) bool {
	return amount >= 0 && amount <= i.MaxCapacity-i.Quantity
}

// Supersedes reports whether i is at least as recent as prev, a copy of the item
// stored under the same name. IDs only grow and stock is only ever added, so the
// pair (ID, Quantity) orders copies of a name without a version column.
func (i Item) Supersedes(prev Item) bool {
	if i.ID != prev.ID {
		return i.ID > prev.ID
	}
	return i.Quantity >= prev.Quantity
}

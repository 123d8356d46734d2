package discovery

import (
	"strings"

	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

// KindFilter selects one event kind. The zero value matches every kind.
type KindFilter struct {
	kind models.EventKind
	set  bool
}

// AnyKind matches every kind.
var AnyKind = KindFilter{}

func OnlyKind(k models.EventKind) KindFilter {
	return KindFilter{kind: k, set: true}
}

func (f KindFilter) Matches(k models.EventKind) bool {
	return !f.set || f.kind == k
}

// Kind returns the selected kind and whether one is selected.
func (f KindFilter) Kind() (models.EventKind, bool) {
	return f.kind, f.set
}

// AgeFilter selects one age bracket. The zero value matches every bracket.
type AgeFilter struct {
	age models.AgeBracket
	set bool
}

// AnyAge matches every bracket.
var AnyAge = AgeFilter{}

func OnlyAge(a models.AgeBracket) AgeFilter {
	return AgeFilter{age: a, set: true}
}

func (f AgeFilter) Matches(a models.AgeBracket) bool {
	return !f.set || f.age == a
}

func (f AgeFilter) Age() (models.AgeBracket, bool) {
	return f.age, f.set
}

func isAll(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todos", "todas":
		return true
	}
	return false
}

// ParseKindFilter maps a query value to a filter; "all" and blanks mean AnyKind.
func ParseKindFilter(s string) KindFilter {
	if isAll(s) {
		return AnyKind
	}
	return OnlyKind(models.EventKind(strings.TrimSpace(s)))
}

// ParseAgeFilter maps a query value to a filter; "all" and blanks mean AnyAge.
func ParseAgeFilter(s string) AgeFilter {
	if isAll(s) {
		return AnyAge
	}
	return OnlyAge(models.AgeBracket(strings.TrimSpace(s)))
}

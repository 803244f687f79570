package triage

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Category string

const (
	CategorySanitation     Category = "Limpeza Urbana e Manejo de Resíduos"
	CategoryGreenAreas     Category = "Manutenção de Áreas Verdes e Paisagismo"
	CategoryInfrastructure Category = "Infraestrutura e Conservação do Mobiliário Urbano"
	CategoryDrainage       Category = "Drenagem e Saneamento"
	CategoryPollution      Category = "Poluição Visual e Ambiental"
	CategoryZoonoses       Category = "Controle de Zoonoses e Pragas"
	CategoryOther          Category = "Outros"
)

// Categories lists the canonical categories in prompt order. Outros is always last.
var Categories = []Category{
	CategorySanitation,
	CategoryGreenAreas,
	CategoryInfrastructure,
	CategoryDrainage,
	CategoryPollution,
	CategoryZoonoses,
	CategoryOther,
}

type Priority string

const (
	PriorityHigh   Priority = "Alta"
	PriorityMedium Priority = "Média"
	PriorityLow    Priority = "Baixa"
)

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

var categoryByAlias = func() map[string]Category {
	out := make(map[string]Category, len(Categories))
	for _, c := range Categories {
		out[foldAlias(string(c))] = c
	}
	return out
}()

// ResolveCategory maps a stored or legacy category name onto its canonical
// spelling, ignoring case, surrounding spaces and diacritics. Unknown names
// resolve to CategoryOther.
//
// This is for catalogue maintenance only; provider output is never resolved,
// it must match a canonical value byte for byte.
func ResolveCategory(name string) Category {
	if c, ok := categoryByAlias[foldAlias(name)]; ok {
		return c
	}
	return CategoryOther
}

// NormalizeCategoryName is the key categories are deduplicated on.
func NormalizeCategoryName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func foldAlias(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, NormalizeCategoryName(name))
	if err != nil {
		return NormalizeCategoryName(name)
	}
	return folded
}

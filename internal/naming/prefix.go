package naming

import "strings"

type PrefixKind int

const (
	PrefixNone PrefixKind = iota
	PrefixTakenDate
	PrefixTakenDateTime
	PrefixOffloadDate
	PrefixLiteral
)

// Prefix is a filename prefix rule. Literal is only meaningful for
// PrefixLiteral.
type Prefix struct {
	Kind    PrefixKind
	Literal string
}

// ParsePrefix never fails: unknown names become literal prefixes.
func ParsePrefix(value string) Prefix {
	switch strings.TrimSpace(value) {
	case "", "empty", "none", "None":
		return Prefix{Kind: PrefixNone}
	case "taken_date":
		return Prefix{Kind: PrefixTakenDate}
	case "taken_date_time":
		return Prefix{Kind: PrefixTakenDateTime}
	case "offload_date":
		return Prefix{Kind: PrefixOffloadDate}
	default:
		return Prefix{Kind: PrefixLiteral, Literal: value}
	}
}

func (p Prefix) String() string {
	switch p.Kind {
	case PrefixTakenDate:
		return "taken_date"
	case PrefixTakenDateTime:
		return "taken_date_time"
	case PrefixOffloadDate:
		return "offload_date"
	case PrefixLiteral:
		return p.Literal
	default:
		return "none"
	}
}

// UsesFileDate reports whether the preset reads the file's own date.
func (p Prefix) UsesFileDate() bool {
	return p.Kind == PrefixTakenDate || p.Kind == PrefixTakenDateTime
}

// Format renders the prefix. An empty result means no prefix.
func (p Prefix) Format(d Dates) string {
	switch p.Kind {
	case PrefixTakenDate:
		return d.Effective().Format("060102")
	case PrefixTakenDateTime:
		return d.Effective().Format("060102_150405")
	case PrefixOffloadDate:
		return d.Run.Format("060102")
	case PrefixLiteral:
		return Validate(p.Literal)
	default:
		return ""
	}
}

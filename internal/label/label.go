// Package label parses modular curve labels and canonicalizes the
// human-readable group names attached to curves.
package label

import (
	"modcurves/pkg/domain"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parts is the structured form of a dotted curve label L.I.G.C.
type Parts struct {
	Level int
	Index int
	Genus int
	// Tail holds the remaining disambiguating components, dot-joined.
	Tail string
}

// String reassembles the label.
func (p Parts) String() string {
	s := strconv.Itoa(p.Level) + "." + strconv.Itoa(p.Index) + "." + strconv.Itoa(p.Genus)
	if p.Tail != "" {
		s += "." + p.Tail
	}
	return s
}

// Parse decomposes a label into level, index, genus and tail. Level and
// index must be positive and genus non-negative.
func Parse(label string) (Parts, error) {
	fields := strings.SplitN(label, ".", 4)
	if len(fields) < 3 {
		return Parts{}, &domain.MalformedLabelError{Label: label, Reason: "expected at least level.index.genus"}
	}
	nums := make([]int, 3)
	for i, name := range []string{"level", "index", "genus"} {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return Parts{}, &domain.MalformedLabelError{Label: label, Reason: name + " is not an integer"}
		}
		nums[i] = n
	}
	if nums[0] < 1 || nums[1] < 1 {
		return Parts{}, &domain.MalformedLabelError{Label: label, Reason: "level and index must be positive"}
	}
	if nums[2] < 0 {
		return Parts{}, &domain.MalformedLabelError{Label: label, Reason: "genus must be non-negative"}
	}
	p := Parts{Level: nums[0], Index: nums[1], Genus: nums[2]}
	if len(fields) == 4 {
		p.Tail = fields[3]
	}
	return p, nil
}

// Canonicalize forces the leading character to X, lowercases the rest and
// strips underscores and carets. Names starting with Xs4( are uppercased.
// The empty name is returned unchanged.
func Canonicalize(name string) string {
	if name == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(name)
	rest := strings.ToLower(name[size:])
	rest = strings.NewReplacer("_", "", "^", "").Replace(rest)
	cname := "X" + rest
	if strings.HasPrefix(cname, "Xs4(") {
		cname = strings.ToUpper(cname)
	}
	return cname
}

// NameToLatex renders a group name as inline LaTeX. Exactly one of the
// ns, sp and S4 rewrites applies, in that priority.
func NameToLatex(name string) string {
	if name == "" {
		return ""
	}
	name = Canonicalize(name)
	name = strings.ReplaceAll(name, "+", "^+")
	switch {
	case strings.Contains(name, "ns"):
		name = strings.ReplaceAll(name, "ns", `{\mathrm{ns}}`)
	case strings.Contains(name, "sp"):
		name = strings.ReplaceAll(name, "sp", `{\mathrm{sp}}`)
	case strings.Contains(name, "S4"):
		name = strings.ReplaceAll(name, "S4", `{S_4}`)
	}
	if len(name) < 2 || name[1] != '(' {
		name = "X_" + name[1:]
	}
	return "$" + name + "$"
}

// DisplayName returns the LaTeX form of name, falling back to the label
// when the curve has no name.
func DisplayName(name, label string) string {
	if name == "" {
		return label
	}
	return NameToLatex(name)
}

// ShowExp renders an exponent suffix. Exponent 1 renders as nothing; single
// digits render bare and longer exponents are braced. wrap adds math delimiters.
func ShowExp(c int, wrap bool) string {
	if c == 1 {
		return ""
	}
	e := "^" + strconv.Itoa(c)
	if c < 0 || c > 9 {
		e = "^{" + strconv.Itoa(c) + "}"
	}
	if wrap {
		return "$" + e + "$"
	}
	return e
}

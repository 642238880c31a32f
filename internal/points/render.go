package points

import (
	"modcurves/internal/label"
	"modcurves/pkg/domain"
	"strconv"
	"strings"
)

// Equation renders the long Weierstrass equation of ainvs [a1, a2, a3, a4, a6].
func Equation(a [5]int64) string {
	var b strings.Builder
	b.WriteString("y^2")
	b.WriteString(term(a[0], "xy"))
	b.WriteString(term(a[2], "y"))
	b.WriteString("=x^3")
	b.WriteString(term(a[1], "x^2"))
	b.WriteString(term(a[3], "x"))
	b.WriteString(term(a[4], ""))
	return b.String()
}

func term(c int64, mono string) string {
	switch {
	case c == 0:
		return ""
	case mono != "" && c == 1:
		return "+" + mono
	case mono != "" && c == -1:
		return "-" + mono
	case c > 0:
		return "+" + strconv.FormatInt(c, 10) + mono
	}
	return "-" + strconv.FormatInt(-c, 10) + mono
}

// CMDisplay renders the CM discriminant, or "no" without CM.
func CMDisplay(cm int) string {
	if cm == 0 {
		return "no"
	}
	return strconv.Itoa(cm)
}

// JFactorization renders the prime factorization of a rational j-invariant.
// Negative exponents belong to the denominator. It is empty when j is 0 or
// 1, or when j is itself a prime.
func JFactorization(jinv string, factors []domain.PrimePower) string {
	if jinv == "0" || len(factors) == 0 {
		return ""
	}
	if len(factors) == 1 && factors[0].Exp() == 1 && jinv == strconv.Itoa(factors[0].Prime()) {
		return ""
	}
	var num, den []string
	for _, f := range factors {
		switch {
		case f.Exp() > 0:
			num = append(num, strconv.Itoa(f.Prime())+label.ShowExp(f.Exp(), false))
		case f.Exp() < 0:
			den = append(den, strconv.Itoa(f.Prime())+label.ShowExp(-f.Exp(), false))
		}
	}
	numerator := "1"
	if len(num) > 0 {
		numerator = strings.Join(num, `\cdot`)
	}
	sign := ""
	if strings.HasPrefix(jinv, "-") {
		sign = "-"
	}
	if len(den) == 0 {
		return sign + numerator
	}
	return sign + `\frac{` + numerator + `}{` + strings.Join(den, `\cdot`) + `}`
}

// splitClass splits "a12" into the class letters and the curve number.
func splitClass(s string) (string, string) {
	i := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// QLink returns the page path of an elliptic curve over Q, e.g.
// 11.a2 -> /EllipticCurve/Q/11/a/2.
func QLink(lmfdbLabel string) string {
	cond, rest, ok := strings.Cut(lmfdbLabel, ".")
	if !ok {
		return "/EllipticCurve/Q/" + lmfdbLabel
	}
	class, num := splitClass(rest)
	if num == "" {
		return "/EllipticCurve/Q/" + cond + "/" + class
	}
	return "/EllipticCurve/Q/" + cond + "/" + class + "/" + num
}

// NFLink returns the page path of an elliptic curve over a number field,
// e.g. 2.2.5.1-31.1-a1 -> /EllipticCurve/2.2.5.1/31.1/a/1.
func NFLink(nfLabel string) string {
	parts := strings.Split(nfLabel, "-")
	if len(parts) != 3 {
		return "/EllipticCurve/" + nfLabel
	}
	class, num := splitClass(parts[2])
	link := "/EllipticCurve/" + parts[0] + "/" + parts[1] + "/" + class
	if num != "" {
		link += "/" + num
	}
	return link
}

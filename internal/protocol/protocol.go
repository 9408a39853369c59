// Package protocol decodes sensor text lines into named numeric values.
//
// A Matcher is built once from a Spec and applied to every line. It never
// returns an error for a line: anything that does not fit the configured
// grammar is "not a data line" and the caller skips it. Firmware boot banners,
// half-written lines after a reset and debug prints all land there.
package protocol

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Variant is one of the supported wire grammars.
type Variant string

const (
	// Delimited is N fields split by a separator, parsed positionally.
	// "0.52,3,0.91" or "0.10,0.75,0.05".
	Delimited Variant = "delimited"

	// LabeledStrict is "L1:<num>,L2:<num>,..." with nothing else on the line.
	LabeledStrict Variant = "labeled-strict"

	// LabeledLoose finds each label in order with arbitrary text between,
	// e.g. "Test:0.91 noisy Rest:0.10 junk Index:0.75 trailing Middle:0.05".
	LabeledLoose Variant = "labeled-loose"
)

// Variants lists every supported variant.
var Variants = []Variant{Delimited, LabeledStrict, LabeledLoose}

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown protocol variant %q", s)
}

// number matches a decimal float with optional sign and exponent.
const number = `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`

var numberRe = regexp.MustCompile(`^` + number + `$`)

// Channel describes one field of the wire format.
type Channel struct {
	Name string
	// Label is the literal token before the value ("Rest:"). Labeled variants only.
	Label string
	// Integer requires the field to parse as a whole number (class ids).
	Integer bool
	// Optional lets a labeled-loose line omit this channel.
	Optional bool
}

// Spec selects a variant and its channels.
type Spec struct {
	Variant   Variant
	Separator string
	Channels  []Channel
}

// Value is one decoded reading.
type Value struct {
	Channel string
	Value   float64
}

// Matcher decodes lines for one Spec. Safe for concurrent use.
type Matcher struct {
	spec  Spec
	names []string
	re    *regexp.Regexp
}

// New compiles a matcher for spec.
func New(spec Spec) (*Matcher, error) {
	if _, err := ParseVariant(string(spec.Variant)); err != nil {
		return nil, err
	}
	if len(spec.Channels) == 0 {
		return nil, fmt.Errorf("protocol needs at least one channel")
	}
	if spec.Separator == "" {
		spec.Separator = ","
	}

	m := &Matcher{
		spec:  spec,
		names: make([]string, len(spec.Channels)),
	}

	required := 0
	for i, ch := range spec.Channels {
		if ch.Name == "" {
			return nil, fmt.Errorf("channel %d has no name", i)
		}
		m.names[i] = ch.Name
		if spec.Variant != Delimited && strings.TrimSpace(ch.Label) == "" {
			return nil, fmt.Errorf("channel %q needs a label for the %s variant", ch.Name, spec.Variant)
		}
		if ch.Optional && spec.Variant != LabeledLoose {
			return nil, fmt.Errorf("channel %q is optional, which only the %s variant supports", ch.Name, LabeledLoose)
		}
		if !ch.Optional {
			required++
		}
	}
	if required == 0 {
		return nil, fmt.Errorf("at least one channel must be required")
	}

	switch spec.Variant {
	case LabeledStrict:
		m.re = strictPattern(spec)
	case LabeledLoose:
		m.re = loosePattern(spec)
	}

	return m, nil
}

// strictPattern anchors the whole line: labels, numbers and separators only,
// with no whitespace between them.
func strictPattern(spec Spec) *regexp.Regexp {
	parts := make([]string, len(spec.Channels))
	for i, ch := range spec.Channels {
		parts[i] = regexp.QuoteMeta(ch.Label) + `(` + number + `)`
	}
	return regexp.MustCompile(`^` + strings.Join(parts, regexp.QuoteMeta(spec.Separator)) + `$`)
}

// loosePattern finds labels in order, skipping anything between them.
// Optional channels are wrapped so the line still matches without them.
func loosePattern(spec Spec) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`^`)
	for _, ch := range spec.Channels {
		part := `.*?` + regexp.QuoteMeta(ch.Label) + `\s*(` + number + `)`
		if ch.Optional {
			part = `(?:` + part + `)?`
		}
		b.WriteString(part)
	}
	return regexp.MustCompile(b.String())
}

// Variant returns the matcher's grammar.
func (m *Matcher) Variant() Variant {
	return m.spec.Variant
}

// Channels returns the channel names in wire order.
func (m *Matcher) Channels() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Match decodes line. It returns false for anything that isn't a complete
// data line: wrong field count, a missing label, or a value that doesn't parse
// to a finite number. Absent optional channels are left out of the result.
func (m *Matcher) Match(line string) ([]Value, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}

	if m.spec.Variant == Delimited {
		return m.matchDelimited(line)
	}
	return m.matchLabeled(line)
}

func (m *Matcher) matchDelimited(line string) ([]Value, bool) {
	fields := strings.Split(line, m.spec.Separator)
	if len(fields) != len(m.spec.Channels) {
		return nil, false
	}

	values := make([]Value, 0, len(fields))
	for i, field := range fields {
		v, ok := parseField(strings.TrimSpace(field), m.spec.Channels[i].Integer)
		if !ok {
			return nil, false
		}
		values = append(values, Value{Channel: m.names[i], Value: v})
	}
	return values, true
}

func (m *Matcher) matchLabeled(line string) ([]Value, bool) {
	groups := m.re.FindStringSubmatch(line)
	if groups == nil {
		return nil, false
	}

	values := make([]Value, 0, len(m.spec.Channels))
	for i, ch := range m.spec.Channels {
		raw := groups[i+1]
		if raw == "" {
			if ch.Optional {
				continue
			}
			return nil, false
		}
		v, ok := parseField(raw, ch.Integer)
		if !ok {
			return nil, false
		}
		values = append(values, Value{Channel: ch.Name, Value: v})
	}
	return values, true
}

// parseField parses one numeric field. Integer fields reject fractions;
// non-finite values (NaN, Inf) are rejected for every field.
func parseField(s string, integer bool) (float64, bool) {
	if !numberRe.MatchString(s) {
		return 0, false
	}
	if integer {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

package monitor

import "fmt"

// Rule maps a decision channel to the state it signals.
type Rule struct {
	Channel string
	State   State
}

// Classifier derives a Status from the latest sample of each decision
// channel. Rules are checked in order and the first channel strictly above
// the threshold wins, so earlier rules break ties.
type Classifier struct {
	rules     []Rule
	threshold float64
	fallback  State
}

// NewClassifier builds a classifier. An empty fallback means StateUncertain.
// With no rules the classifier is disabled.
func NewClassifier(rules []Rule, threshold float64, fallback State) *Classifier {
	if fallback == StateNone {
		fallback = StateUncertain
	}
	r := make([]Rule, len(rules))
	copy(r, rules)
	return &Classifier{rules: r, threshold: threshold, fallback: fallback}
}

// Enabled reports whether there is anything to classify.
func (c *Classifier) Enabled() bool {
	return c != nil && len(c.rules) > 0
}

// Threshold returns T.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Fallback returns the state used when no rule fires.
func (c *Classifier) Fallback() State {
	return c.fallback
}

// Rules returns a copy of the rules in priority order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Decides reports whether channel is one of the decision channels.
func (c *Classifier) Decides(channel string) bool {
	for _, r := range c.rules {
		if r.Channel == channel {
			return true
		}
	}
	return false
}

// Classify applies the rules to latest, which returns a channel's most recent
// value and whether it has one. Channels without a value never fire.
func (c *Classifier) Classify(latest func(channel string) (float64, bool)) Status {
	for _, r := range c.rules {
		v, ok := latest(r.Channel)
		if ok && v > c.threshold {
			return Status{
				State: r.State,
				Text:  fmt.Sprintf("%s (%s %.2f > %.2f)", r.State.Description(), r.Channel, v, c.threshold),
			}
		}
	}
	return Status{
		State: c.fallback,
		Text:  fmt.Sprintf("%s (nothing above %.2f)", c.fallback.Description(), c.threshold),
	}
}

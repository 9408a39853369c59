package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	signalClass = Spec{
		Variant:   Delimited,
		Separator: ",",
		Channels: []Channel{
			{Name: "signal"},
			{Name: "class", Integer: true},
			{Name: "confidence"},
		},
	}
	probabilities = Spec{
		Variant:   Delimited,
		Separator: ",",
		Channels:  []Channel{{Name: "rest"}, {Name: "index"}, {Name: "middle"}},
	}
	labeledStrict = Spec{
		Variant:   LabeledStrict,
		Separator: ",",
		Channels: []Channel{
			{Name: "rest", Label: "Rest:"},
			{Name: "index", Label: "Index:"},
			{Name: "middle", Label: "Middle:"},
		},
	}
	labeledLoose = Spec{
		Variant: LabeledLoose,
		Channels: []Channel{
			{Name: "test", Label: "Test:", Optional: true},
			{Name: "rest", Label: "Rest:"},
			{Name: "index", Label: "Index:"},
			{Name: "middle", Label: "Middle:"},
		},
	}
	filtered = Spec{
		Variant: LabeledLoose,
		Channels: []Channel{
			{Name: "raw", Label: "Ham:"},
			{Name: "filtered", Label: "Filtreli:"},
		},
	}
)

func mustNew(t *testing.T, spec Spec) *Matcher {
	t.Helper()
	m, err := New(spec)
	require.NoError(t, err)
	return m
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		spec   Spec
		line   string
		want   []Value
		wantOK bool
	}{
		// delimited, signal/class/confidence
		{
			name:   "signal class confidence",
			spec:   signalClass,
			line:   "0.52,3,0.91",
			want:   []Value{{"signal", 0.52}, {"class", 3}, {"confidence", 0.91}},
			wantOK: true,
		},
		{
			name:   "fields are trimmed",
			spec:   signalClass,
			line:   " 12.5 , 0 , 1.0 \r",
			want:   []Value{{"signal", 12.5}, {"class", 0}, {"confidence", 1}},
			wantOK: true,
		},
		{name: "class must be an integer", spec: signalClass, line: "0.52,3.5,0.91"},
		{name: "too few fields", spec: signalClass, line: "0.5,0.3"},
		{name: "too many fields", spec: signalClass, line: "0.5,1,0.3,0.2"},
		{name: "empty field", spec: signalClass, line: "0.5,,0.3"},
		{name: "boot banner", spec: signalClass, line: "Model yuklendi, hazir"},
		{name: "empty line", spec: signalClass, line: ""},

		// delimited, probabilities
		{
			name:   "three probabilities",
			spec:   probabilities,
			line:   "0.10,0.75,0.05",
			want:   []Value{{"rest", 0.1}, {"index", 0.75}, {"middle", 0.05}},
			wantOK: true,
		},
		{
			name:   "exponent and sign",
			spec:   probabilities,
			line:   "1e-3,+0.5,-.25",
			want:   []Value{{"rest", 0.001}, {"index", 0.5}, {"middle", -0.25}},
			wantOK: true,
		},
		{name: "non numeric", spec: probabilities, line: "0.10,abc,0.05"},
		{name: "NaN rejected", spec: probabilities, line: "0.10,NaN,0.05"},
		{name: "Inf rejected", spec: probabilities, line: "0.10,Inf,0.05"},
		{name: "overflow rejected", spec: probabilities, line: "0.10,1e999,0.05"},
		{name: "hex float rejected", spec: probabilities, line: "0x1p-2,0.5,0.5"},

		// labeled strict
		{
			name:   "strict labels",
			spec:   labeledStrict,
			line:   "Rest:0.10,Index:0.75,Middle:0.05",
			want:   []Value{{"rest", 0.1}, {"index", 0.75}, {"middle", 0.05}},
			wantOK: true,
		},
		{name: "strict rejects space after label", spec: labeledStrict, line: "Rest: 0.10,Index:0.75,Middle:0.05"},
		{name: "strict rejects spaces around separator", spec: labeledStrict, line: "Rest:0.1 , Index:0.7 ,Middle:0.2"},
		{name: "strict rejects trailing text", spec: labeledStrict, line: "Rest:0.10,Index:0.75,Middle:0.05 ok"},
		{name: "strict rejects leading text", spec: labeledStrict, line: "Test:0.9Rest:0.10,Index:0.75,Middle:0.05"},
		{name: "strict rejects wrong order", spec: labeledStrict, line: "Index:0.75,Rest:0.10,Middle:0.05"},
		{name: "strict rejects missing field", spec: labeledStrict, line: "Rest:0.10,Index:0.75"},
		{name: "strict rejects wrong separator", spec: labeledStrict, line: "Rest:0.10;Index:0.75;Middle:0.05"},

		// labeled loose
		{
			name: "loose with noise between labels",
			spec: labeledLoose,
			line: "Test:0.91 noisy Rest:0.10 junk Index:0.75 trailing Middle:0.05",
			want: []Value{
				{"test", 0.91}, {"rest", 0.1}, {"index", 0.75}, {"middle", 0.05},
			},
			wantOK: true,
		},
		{
			name: "loose firmware output without separator after Test",
			spec: labeledLoose,
			line: "Test:0.913000Rest:0.100000,Index:0.750000,Middle:0.050000",
			want: []Value{
				{"test", 0.913}, {"rest", 0.1}, {"index", 0.75}, {"middle", 0.05},
			},
			wantOK: true,
		},
		{
			name:   "loose optional channel absent",
			spec:   labeledLoose,
			line:   "Rest:0.10,Index:0.75,Middle:0.05",
			want:   []Value{{"rest", 0.1}, {"index", 0.75}, {"middle", 0.05}},
			wantOK: true,
		},
		{
			name:   "loose accepts strict input",
			spec:   labeledLoose,
			line:   "Rest: 0.7 | Index: 0.2 | Middle: 0.1 <- karar",
			want:   []Value{{"rest", 0.7}, {"index", 0.2}, {"middle", 0.1}},
			wantOK: true,
		},
		{name: "loose missing required channel", spec: labeledLoose, line: "Test:0.91 Rest:0.10 Index:0.75"},
		{name: "loose label without number", spec: labeledLoose, line: "Rest:x Index:0.75 Middle:0.05"},
		{name: "loose out of order", spec: labeledLoose, line: "Middle:0.05 Index:0.75 Rest:0.10"},

		// filtered sub-case
		{
			name:   "raw and filtered",
			spec:   filtered,
			line:   "Ham: 0.42 | Filtreli: 0.31",
			want:   []Value{{"raw", 0.42}, {"filtered", 0.31}},
			wantOK: true,
		},
		{name: "filtered missing", spec: filtered, line: "Ham: 0.42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustNew(t, tt.spec)

			got, ok := m.Match(tt.line)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, got)
				return
			}
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Channel, got[i].Channel)
				assert.InDelta(t, tt.want[i].Value, got[i].Value, 1e-12)
			}
		})
	}
}

func TestMatch_CustomSeparator(t *testing.T) {
	m := mustNew(t, Spec{
		Variant:   Delimited,
		Separator: "\t",
		Channels:  []Channel{{Name: "a"}, {Name: "b"}},
	})

	got, ok := m.Match("1.5\t2.5")
	require.True(t, ok)
	assert.Equal(t, []Value{{"a", 1.5}, {"b", 2.5}}, got)

	_, ok = m.Match("1.5,2.5")
	assert.False(t, ok)
}

func TestMatch_StrictSeparatorIsLiteral(t *testing.T) {
	m := mustNew(t, Spec{
		Variant:   LabeledStrict,
		Separator: "|",
		Channels:  []Channel{{Name: "a", Label: "A("}, {Name: "b", Label: "B."}},
	})

	got, ok := m.Match("A(1|B.2")
	require.True(t, ok)
	assert.Equal(t, []Value{{"a", 1}, {"b", 2}}, got)

	_, ok = m.Match("A(1xB.2")
	assert.False(t, ok)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr string
	}{
		{
			name:    "unknown variant",
			spec:    Spec{Variant: "json", Channels: []Channel{{Name: "a"}}},
			wantErr: "unknown protocol variant",
		},
		{
			name:    "no channels",
			spec:    Spec{Variant: Delimited},
			wantErr: "at least one channel",
		},
		{
			name:    "unnamed channel",
			spec:    Spec{Variant: Delimited, Channels: []Channel{{Name: ""}}},
			wantErr: "no name",
		},
		{
			name:    "labeled without label",
			spec:    Spec{Variant: LabeledLoose, Channels: []Channel{{Name: "rest"}}},
			wantErr: "needs a label",
		},
		{
			name:    "optional on strict",
			spec:    Spec{Variant: LabeledStrict, Channels: []Channel{{Name: "a", Label: "A:", Optional: true}, {Name: "b", Label: "B:"}}},
			wantErr: "optional",
		},
		{
			name:    "all optional",
			spec:    Spec{Variant: LabeledLoose, Channels: []Channel{{Name: "a", Label: "A:", Optional: true}}},
			wantErr: "must be required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.spec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMatcher_Accessors(t *testing.T) {
	m := mustNew(t, labeledLoose)

	assert.Equal(t, LabeledLoose, m.Variant())
	names := m.Channels()
	assert.Equal(t, []string{"test", "rest", "index", "middle"}, names)

	names[0] = "mutated"
	assert.Equal(t, "test", m.Channels()[0], "Channels returns a copy")
}

func TestParseVariant(t *testing.T) {
	for _, v := range Variants {
		got, err := ParseVariant(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	_, err := ParseVariant("")
	assert.Error(t, err)
}

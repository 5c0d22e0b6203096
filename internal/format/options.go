package format

import "strings"

// Pass identifies one switchable correction.
type Pass uint16

const (
	AlignComments Pass = 1 << iota
	AlignCaseWhen
	AlignCallArguments
	AlignAssignments
	DedentCalls
	HugLiterals
	CompactDeclarations
)

// AllPasses has every correction bit set.
const AllPasses = AlignComments | AlignCaseWhen | AlignCallArguments | AlignAssignments |
	DedentCalls | HugLiterals | CompactDeclarations

var passNames = []struct {
	p    Pass
	name string
}{
	{AlignComments, "align_comments"},
	{AlignCaseWhen, "align_case_when"},
	{AlignCallArguments, "align_call_arguments"},
	{AlignAssignments, "align_assignments"},
	{DedentCalls, "dedent_calls"},
	{HugLiterals, "hug_literals"},
	{CompactDeclarations, "compact_declarations"},
}

// String lists the set bits by option name.
func (p Pass) String() string {
	var names []string
	for _, pn := range passNames {
		if p&pn.p != 0 {
			names = append(names, pn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// PassByName resolves an option name such as "dedent_calls".
func PassByName(name string) (Pass, bool) {
	for _, pn := range passNames {
		if pn.name == name {
			return pn.p, true
		}
	}
	return 0, false
}

// Options controls one formatting run. The zero value formats at width 80
// with two-column indentation and every correction enabled.
type Options struct {
	Width       int
	IndentWidth int
	// Disabled switches individual corrections off.
	Disabled Pass
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = 80
	}
	if o.IndentWidth <= 0 {
		o.IndentWidth = 2
	}
	return o
}

// Enabled reports whether correction p runs.
func (o Options) Enabled(p Pass) bool { return o.Disabled&p == 0 }

package tiptap

import "regexp"

var (
	linkPattern   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldPattern   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicPattern = regexp.MustCompile(`\*([^*]+)\*`)
)

// fragment is a piece of a line between inline passes. A marked fragment
// is final: later passes copy it through untouched.
type fragment struct {
	text  string
	marks []Mark
}

func (f fragment) final() bool { return len(f.marks) > 0 }

// ParseInline splits one line of text into styled runs.
//
// Links are extracted first, then bold spans, then italic spans; each pass
// only looks at text no earlier pass has marked, so runs never combine
// marks. The result is never empty: text without any runs comes back as a
// single unmarked run.
func ParseInline(text string) []Text {
	frags := []fragment{{text: text}}
	frags = splitFragments(frags, linkPattern, func(m []string) (fragment, bool) {
		return fragment{text: m[1], marks: []Mark{Link(m[2])}}, true
	})
	frags = splitFragments(frags, boldPattern, func(m []string) (fragment, bool) {
		return fragment{text: m[1], marks: []Mark{Bold()}}, true
	})
	frags = splitFragments(frags, italicPattern, func(m []string) (fragment, bool) {
		// A bare "**" left over from the bold pass is not an italic span.
		if len(m[0]) <= 2 {
			return fragment{}, false
		}
		return fragment{text: m[1], marks: []Mark{Italic()}}, true
	})

	runs := make([]Text, 0, len(frags))
	for _, f := range frags {
		if f.text == "" {
			continue
		}
		runs = append(runs, Text{Text: f.text, Marks: f.marks})
	}
	if len(runs) == 0 {
		return []Text{{Text: text}}
	}
	return runs
}

// splitFragments runs one inline pass. Every unmarked fragment is cut
// around the matches of re; build turns a match (full text plus groups)
// into a marked fragment, or rejects it so the span stays plain text.
func splitFragments(in []fragment, re *regexp.Regexp, build func(groups []string) (fragment, bool)) []fragment {
	out := make([]fragment, 0, len(in))
	for _, f := range in {
		if f.final() {
			out = append(out, f)
			continue
		}

		last := 0
		for _, loc := range re.FindAllStringSubmatchIndex(f.text, -1) {
			marked, ok := build(submatches(f.text, loc))
			if !ok {
				continue
			}
			out = appendPlain(out, f.text[last:loc[0]])
			out = append(out, marked)
			last = loc[1]
		}
		out = appendPlain(out, f.text[last:])
	}
	return out
}

func appendPlain(out []fragment, text string) []fragment {
	if text == "" {
		return out
	}
	return append(out, fragment{text: text})
}

func submatches(s string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if start := loc[2*i]; start >= 0 {
			groups[i] = s[start:loc[2*i+1]]
		}
	}
	return groups
}

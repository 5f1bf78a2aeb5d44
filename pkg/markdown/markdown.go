// Package markdown converts a small, line-oriented Markdown dialect into
// sanitized HTML fragments suitable for direct insertion into a container
// element.
//
// The dialect covers ATX headers, bold/italic, fenced and inline code,
// links, images, horizontal rules, blockquotes, flat lists, and paragraphs.
// It is intentionally not CommonMark: no tables, nested lists, reference
// links, or raw HTML pass-through.
//
// Conversion is a fixed sequence of text rewrites over the whole input, and
// the order of the stages is part of the contract. Escaping runs first, so
// literal '&', '<', and '>' from the input can never reach the output
// unescaped; every later stage operates on already-escaped text. Feeding a
// converter its own output is undefined and unsupported.
package markdown

import (
	"regexp"
	"strings"
)

// Converter turns note bodies into HTML fragments. It holds no state across
// calls; a single Converter may be shared by any number of goroutines.
type Converter struct {
	strictLists bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithStrictLists wraps every contiguous list run in <ul> (or <ol> for
// numbered items) instead of the default behavior, which wraps only the
// first unordered run in the document and never emits <ol>. The default
// reproduces the historical output; strict mode is the corrected form.
func WithStrictLists() Option {
	return func(c *Converter) { c.strictLists = true }
}

// New returns a Converter. With no options it reproduces the legacy
// single-list-wrap output exactly.
func New(opts ...Option) *Converter {
	c := &Converter{}
	for _, o := range opts {
		o(c)
	}
	return c
}

var std = New()

// Convert runs the default Converter. See Converter.Convert.
func Convert(text string) string { return std.Convert(text) }

// escaper runs a single left-to-right pass; '&' is listed first so entities
// produced here are never re-escaped.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var (
	// Headers are tried from six '#'s down to one so a longer run is never
	// read as a shorter run followed by literal '#'.
	headerRE = [6]*regexp.Regexp{
		regexp.MustCompile(`(?m)^###### +(.+)$`),
		regexp.MustCompile(`(?m)^##### +(.+)$`),
		regexp.MustCompile(`(?m)^#### +(.+)$`),
		regexp.MustCompile(`(?m)^### +(.+)$`),
		regexp.MustCompile(`(?m)^## +(.+)$`),
		regexp.MustCompile(`(?m)^# +(.+)$`),
	}
	headerTag = [6]string{"h6", "h5", "h4", "h3", "h2", "h1"}

	boldStarRE   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderRE  = regexp.MustCompile(`__(.+?)__`)
	italStarRE   = regexp.MustCompile(`\*(.+?)\*`)
	italUnderRE  = regexp.MustCompile(`_(.+?)_`)
	fenceRE      = regexp.MustCompile("(?s)```(.*?)```")
	inlineCodeRE = regexp.MustCompile("`([^`]+)`")
	linkRE       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	imageRE      = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	hrDashRE     = regexp.MustCompile(`(?m)^---$`)
	hrStarRE     = regexp.MustCompile(`(?m)^\*\*\*$`)
	// Blockquote matches the escaped form of '> ': it runs after the escape
	// stage, so the raw marker no longer exists in the text.
	quoteRE  = regexp.MustCompile(`(?m)^&gt; (.+)$`)
	ulItemRE = regexp.MustCompile(`(?m)^[*-] (.+)$`)
	olItemRE = regexp.MustCompile(`(?m)^\d+\. (.+)$`)

	// ulRunRE matches one contiguous run of <li> lines. Only its first match
	// gets a <ul> wrapper in legacy mode.
	ulRunRE = regexp.MustCompile(`(?m)^<li>.*</li>(?:\n<li>.*</li>)*`)

	// blockOpenRE recognizes segments that already start with a block-level
	// tag and therefore must not be paragraph-wrapped.
	blockOpenRE = regexp.MustCompile(`^<(h[1-6]|hr|ul|ol|li|blockquote|pre|p)\b`)

	ulLineRE = regexp.MustCompile(`^[*-] (.+)$`)
	olLineRE = regexp.MustCompile(`^\d+\. (.+)$`)
)

// Convert transforms one note body into an HTML fragment. It is pure and
// total: empty input yields "", and malformed constructs (an unterminated
// "**", a dangling "["...) simply fail to match and come through as escaped
// literal text. All regular expressions are RE2, so cost stays linear in the
// input even for adversarial marker soup.
func (c *Converter) Convert(text string) string {
	if text == "" {
		return ""
	}

	// Stage 1: escape. Must precede all markup generation.
	text = escaper.Replace(text)

	// Stage 2: headers, longest marker first.
	for i, re := range headerRE {
		tag := headerTag[i]
		text = re.ReplaceAllString(text, "<"+tag+">${1}</"+tag+">")
	}

	// Stage 3: bold before italic, so ** is never split into two *.
	text = boldStarRE.ReplaceAllString(text, "<strong>${1}</strong>")
	text = boldUnderRE.ReplaceAllString(text, "<strong>${1}</strong>")
	text = italStarRE.ReplaceAllString(text, "<em>${1}</em>")
	text = italUnderRE.ReplaceAllString(text, "<em>${1}</em>")

	// Stages 4-5: fenced blocks, then inline code.
	text = fenceRE.ReplaceAllString(text, "<pre><code>${1}</code></pre>")
	text = inlineCodeRE.ReplaceAllString(text, "<code>${1}</code>")

	// Stages 6-7: links, then images. Because links run first, an image with
	// a non-empty alt has its bracketed part consumed by the link rule; only
	// empty-alt images reach the image rule. Historical order, kept as is.
	text = linkRE.ReplaceAllString(text, `<a href="${2}" target="_blank">${1}</a>`)
	text = imageRE.ReplaceAllString(text, `<img src="${2}" alt="${1}" />`)

	// Stage 8: horizontal rules.
	text = hrDashRE.ReplaceAllString(text, "<hr>")
	text = hrStarRE.ReplaceAllString(text, "<hr>")

	// Stage 9: blockquotes.
	text = quoteRE.ReplaceAllString(text, "<blockquote>${1}</blockquote>")

	// Stages 10-11: lists.
	if c.strictLists {
		text = strictListPass(text)
	} else {
		text = legacyListPass(text)
	}

	// Stage 12: paragraph wrapping.
	return wrapParagraphs(text)
}

func legacyListPass(text string) string {
	// Unordered items first; then exactly one <ul> around the first
	// contiguous <li> run in the whole document. Later runs stay as bare
	// <li> siblings.
	text = ulItemRE.ReplaceAllString(text, "<li>${1}</li>")
	if loc := ulRunRE.FindStringIndex(text); loc != nil {
		text = text[:loc[0]] + "<ul>" + text[loc[0]:loc[1]] + "</ul>" + text[loc[1]:]
	}
	// Ordered items become <li> lines with no container at all.
	return olItemRE.ReplaceAllString(text, "<li>${1}</li>")
}

// strictListPass classifies lines instead of rewriting globally: every
// contiguous run of unordered items becomes one <ul>, every run of ordered
// items one <ol>.
func strictListPass(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); {
		switch {
		case ulLineRE.MatchString(lines[i]):
			var items []string
			for i < len(lines) && ulLineRE.MatchString(lines[i]) {
				items = append(items, "<li>"+ulLineRE.FindStringSubmatch(lines[i])[1]+"</li>")
				i++
			}
			out = append(out, "<ul>"+strings.Join(items, "\n")+"</ul>")
		case olLineRE.MatchString(lines[i]):
			var items []string
			for i < len(lines) && olLineRE.MatchString(lines[i]) {
				items = append(items, "<li>"+olLineRE.FindStringSubmatch(lines[i])[1]+"</li>")
				i++
			}
			out = append(out, "<ol>"+strings.Join(items, "\n")+"</ol>")
		default:
			out = append(out, lines[i])
			i++
		}
	}
	return strings.Join(out, "\n")
}

// wrapParagraphs splits on blank lines and wraps segments that do not open
// with a block-level tag. Segments are rejoined with a single newline.
func wrapParagraphs(text string) string {
	segs := strings.Split(text, "\n\n")
	for i, s := range segs {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if blockOpenRE.MatchString(s) {
			continue
		}
		segs[i] = "<p>" + s + "</p>"
	}
	return strings.Join(segs, "\n")
}

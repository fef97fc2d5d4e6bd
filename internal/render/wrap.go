package render

import "strings"

// wrapText breaks text into lines no wider than width. Lines break between
// words; a single word wider than width is split between characters.
// Explicit newlines start a new line and blank lines are kept. Empty text
// yields no lines.
func wrapText(m Measurer, text string, width float64, style Style) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(m, paragraph, width, style)...)
	}
	return lines
}

func wrapParagraph(m Measurer, paragraph string, width float64, style Style) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if m.StringWidth(candidate, style) <= width {
			line = candidate
			continue
		}

		if line != "" {
			lines = append(lines, line)
			line = ""
		}
		if m.StringWidth(word, style) <= width {
			line = word
			continue
		}

		pieces := splitWord(m, word, width, style)
		lines = append(lines, pieces[:len(pieces)-1]...)
		line = pieces[len(pieces)-1]
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// splitWord cuts word into pieces that fit width. Every piece holds at
// least one character, so a width narrower than any glyph still
// terminates.
func splitWord(m Measurer, word string, width float64, style Style) []string {
	var pieces []string
	runes := []rune(word)
	for len(runes) > 0 {
		n := 1
		for n < len(runes) && m.StringWidth(string(runes[:n+1]), style) <= width {
			n++
		}
		pieces = append(pieces, string(runes[:n]))
		runes = runes[n:]
	}
	return pieces
}

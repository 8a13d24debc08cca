package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// CleanMarkdown strips conversational filler and outer markdown code blocks.
// LLM replies often wrap JSON in ```json fences; this returns the body.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSuffix(cleaned, "```")
		// Drop the fence line including any language tag (```json, ```markdown)
		if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 {
			cleaned = cleaned[nl+1:]
		} else {
			cleaned = strings.TrimPrefix(cleaned, "```")
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// CountMarkdownTableRows parses GFM tables and returns the number of body
// rows of the first table, or -1 if the document holds no table.
func CountMarkdownTableRows(input string) int {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	src := []byte(input)
	doc := md.Parser().Parse(text.NewReader(src))

	rows := -1
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() == east.KindTable {
			rows = 0
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if c.Kind() == east.KindTableRow {
					rows++
				}
			}
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return rows
}

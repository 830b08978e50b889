// Package codegen turns ordered step sequences into standalone Playwright
// test scripts. Generation is a pure transform: identical inputs always
// produce byte-identical output, and nothing here reads or mutates recording
// or registry state.
package codegen

import (
	"fmt"
	"strings"

	"github.com/replaykit/replaykit/step"
)

const (
	defaultUsernameSelector = `input[name="username"]`
	defaultPasswordSelector = `input[name="password"]`
	defaultSubmitSelector   = `button[type="submit"]`

	defaultUsername = "testuser"
	defaultPassword = "testpass"
)

// Generator emits Playwright TypeScript test scripts.
type Generator struct{}

// NewGenerator creates a script generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Script compiles a step sequence into a Playwright test file. Output is one
// describe block named after the scenario, a beforeEach navigating to the
// initial URL, and one test block per step in original order. Steps of an
// unrecognized kind degrade to a comment carrying the description, so
// scripts stay generatable as the taxonomy grows.
func (g *Generator) Script(scenarioName string, steps []step.Step, initialURL string) string {
	var b strings.Builder

	b.WriteString("import { test, expect } from '@playwright/test';\n\n")
	fmt.Fprintf(&b, "test.describe(%s, () => {\n", jsString(scenarioName))
	b.WriteString("  test.beforeEach(async ({ page }) => {\n")
	fmt.Fprintf(&b, "    await page.goto(%s);\n", jsString(initialURL))
	b.WriteString("  });\n")

	for _, st := range steps {
		b.WriteString("\n")
		g.writeStep(&b, st)
	}

	b.WriteString("});\n")
	return b.String()
}

func (g *Generator) writeStep(b *strings.Builder, st step.Step) {
	switch st.Kind {
	case step.KindLogin:
		g.writeLogin(b, st)
	case step.KindNavigation, step.KindAction, step.KindClick:
		g.writeClick(b, st)
	case step.KindFill:
		g.writeTest(b, st.Description, func() {
			fmt.Fprintf(b, "    await page.fill(%s, %s);\n", jsString(st.Selector), jsString(st.Payload.Value))
		})
	case step.KindSelect:
		g.writeTest(b, st.Description, func() {
			fmt.Fprintf(b, "    await page.selectOption(%s, %s);\n", jsString(st.Selector), jsString(st.Payload.Value))
		})
	case step.KindCheck:
		g.writeTest(b, st.Description, func() {
			fmt.Fprintf(b, "    await page.check(%s);\n", jsString(st.Selector))
		})
	case step.KindUncheck:
		g.writeTest(b, st.Description, func() {
			fmt.Fprintf(b, "    await page.uncheck(%s);\n", jsString(st.Selector))
		})
	default:
		// Unknown kinds are preserved as comments rather than rejected.
		fmt.Fprintf(b, "  // %s\n", commentText(st.Description))
	}
}

func (g *Generator) writeTest(b *strings.Builder, description string, body func()) {
	fmt.Fprintf(b, "  test(%s, async ({ page }) => {\n", jsString(description))
	body()
	b.WriteString("  });\n")
}

func (g *Generator) writeLogin(b *strings.Builder, st step.Step) {
	userSel, passSel := splitLoginSelectors(st.Selector)

	username := st.Payload.Username
	if username == "" {
		username = defaultUsername
	}
	password := st.Payload.Password
	if password == "" {
		password = defaultPassword
	}
	submit := st.Payload.SubmitSelector
	if submit == "" {
		submit = defaultSubmitSelector
	}

	g.writeTest(b, st.Description, func() {
		fmt.Fprintf(b, "    await page.fill(%s, %s);\n", jsString(userSel), jsString(username))
		fmt.Fprintf(b, "    await page.fill(%s, %s);\n", jsString(passSel), jsString(password))
		fmt.Fprintf(b, "    await page.click(%s);\n", jsString(submit))
		writeExpectedText(b, st.ExpectedText)
	})
}

func (g *Generator) writeClick(b *strings.Builder, st step.Step) {
	g.writeTest(b, st.Description, func() {
		if st.NavigatesByURL() {
			fmt.Fprintf(b, "    await page.goto(%s);\n", jsString(st.Payload.URL))
		} else {
			fmt.Fprintf(b, "    await page.click(%s);\n", jsString(st.Selector))
		}
		writeExpectedText(b, st.ExpectedText)
	})
}

func writeExpectedText(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(b, "    await expect(page.getByText(%s)).toBeVisible();\n", jsString(text))
}

// splitLoginSelectors splits a recorded "user, password" selector pair.
// A single selector is used for the username field, with the password field
// falling back to its default.
func splitLoginSelectors(selector string) (string, string) {
	parts := strings.SplitN(selector, ",", 2)
	userSel := strings.TrimSpace(parts[0])
	if userSel == "" {
		userSel = defaultUsernameSelector
	}
	passSel := defaultPasswordSelector
	if len(parts) == 2 {
		if p := strings.TrimSpace(parts[1]); p != "" {
			passSel = p
		}
	}
	return userSel, passSel
}

// jsString renders s as a single-quoted JavaScript string literal.
func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// commentText keeps emitted comments on a single line.
func commentText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueryInput(t *testing.T) {
	q := NewQueryInput(nil, "Ask", "Ask a question...")

	require.NotNil(t, q)
	assert.True(t, q.Focused())
	assert.Empty(t, q.Value())
	assert.Equal(t, "Ask", q.Label())
}

func TestQueryInput_Typing(t *testing.T) {
	q := NewQueryInput(nil, "Search", "")

	for _, r := range "deploy" {
		q, _ = q.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "deploy", q.Value())
}

func TestQueryInput_BlurIgnoresTyping(t *testing.T) {
	q := NewQueryInput(nil, "Search", "")
	q.Blur()

	q, _ = q.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.False(t, q.Focused())
	assert.Empty(t, q.Value())
}

func TestQueryInput_SetValueAndFocus(t *testing.T) {
	q := NewQueryInput(nil, "Search", "")
	q.Blur()
	q.SetValue("helm chart")
	q.Focus()

	assert.True(t, q.Focused())
	assert.Equal(t, "helm chart", q.Value())
}

func TestQueryInput_View(t *testing.T) {
	q := NewQueryInput(nil, "Ask", "")
	q.SetValue("how to build?")

	view := q.View()

	assert.Contains(t, view, "Ask:")
	assert.Contains(t, view, "how to build?")
}

func TestQueryInput_SetWidth(t *testing.T) {
	q := NewQueryInput(nil, "Ask", "")

	q.SetWidth(100)
	assert.Equal(t, 100, q.Width())

	q.SetWidth(5)
	assert.Equal(t, 5, q.Width())
	assert.Equal(t, 20, q.textinput.Width, "input keeps a minimum width")
}

func TestQueryInput_Init(t *testing.T) {
	assert.NotNil(t, NewQueryInput(nil, "Ask", "").Init())
}

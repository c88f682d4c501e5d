package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewMenu, "menu"},
		{ViewAsk, "ask"},
		{ViewSearch, "search"},
		{ViewDocuments, "documents"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestViewType_Distinct(t *testing.T) {
	seen := make(map[ViewType]bool)
	for _, v := range []ViewType{ViewMenu, ViewAsk, ViewSearch, ViewDocuments, ViewHelp} {
		assert.False(t, seen[v], "duplicate view type %d", v)
		seen[v] = true
	}
}

func TestSearchCompleted_CarriesError(t *testing.T) {
	err := errors.New("store down")
	msg := SearchCompleted{Err: err}

	assert.Nil(t, msg.Results)
	assert.Equal(t, err, msg.Err)
}

func TestAnswerCompleted_CarriesAnswer(t *testing.T) {
	msg := AnswerCompleted{Answer: &domain.Answer{Answer: "yes", Confidence: 0.5}}

	assert.NoError(t, msg.Err)
	assert.Equal(t, "yes", msg.Answer.Answer)
}

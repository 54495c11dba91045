package catalog

import (
	"adaudit/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.NotEmpty(t, c.Version)

	models := []model.BusinessModel{}
	for _, s := range c.Segments() {
		models = append(models, s.Model)
		for _, q := range s.Questions {
			assert.NotEmpty(t, q.Prompt, q.ID)
			assert.Equal(t, 100, q.MaxScore(), "question %s should offer a full-score option", q.ID)
		}
	}
	assert.Equal(t, []model.BusinessModel{
		model.BusinessProducts, model.BusinessServices, model.BusinessAccess, model.BusinessAudience,
	}, models)
}

func TestQuestionsFilterByChannel(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	all, err := c.Questions(model.BusinessProducts, model.ChannelBoth)
	require.NoError(t, err)
	seg, err := c.Segment(model.BusinessProducts)
	require.NoError(t, err)
	assert.Equal(t, seg.Questions, all)

	tests := []struct {
		channel model.Channel
		exclude model.Category
	}{
		{model.ChannelMeta, model.CategoryGoogle},
		{model.ChannelGoogle, model.CategoryMeta},
	}
	for _, tt := range tests {
		t.Run(string(tt.channel), func(t *testing.T) {
			qs, err := c.Questions(model.BusinessProducts, tt.channel)
			require.NoError(t, err)
			general := 0
			for _, q := range qs {
				assert.NotEqual(t, tt.exclude, q.Category, q.ID)
				if q.Category == model.CategoryGeneral {
					general++
				}
			}
			assert.Positive(t, general, "general questions must survive every channel filter")
		})
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	qs := []model.Question{
		{ID: "a", Category: model.CategoryGoogle},
		{ID: "b", Category: model.CategoryGeneral},
		{ID: "c", Category: model.CategoryMeta},
		{ID: "d", Category: model.CategoryGeneral},
	}
	ids := func(qs []model.Question) []string {
		out := []string{}
		for _, q := range qs {
			out = append(out, q.ID)
		}
		return out
	}
	assert.Equal(t, []string{"b", "c", "d"}, ids(Filter(qs, model.ChannelMeta)))
	assert.Equal(t, []string{"a", "b", "d"}, ids(Filter(qs, model.ChannelGoogle)))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(Filter(qs, model.ChannelBoth)))
}

func TestQuestionsUnknownSelection(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Questions("franchise", model.ChannelBoth)
	assert.ErrorIs(t, err, ErrUnknownBusinessModel)

	_, err = c.Questions(model.BusinessServices, "tiktok")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no version", `segments: [{model: products, groups: [g]}]
groups: {g: [{id: a, category: meta, prompt: p, options: [{label: x, score: 1}]}]}`},
		{"unknown group", `version: "1"
segments: [{model: products, groups: [missing]}]`},
		{"duplicate id", `version: "1"
segments: [{model: products, groups: [g, g]}]
groups: {g: [{id: a, category: meta, prompt: p, options: [{label: x, score: 1}]}]}`},
		{"no options", `version: "1"
segments: [{model: products, groups: [g]}]
groups: {g: [{id: a, category: meta, prompt: p, options: []}]}`},
		{"bad category", `version: "1"
segments: [{model: products, groups: [g]}]
groups: {g: [{id: a, category: tiktok, prompt: p, options: [{label: x, score: 1}]}]}`},
		{"score out of range", `version: "1"
segments: [{model: products, groups: [g]}]
groups: {g: [{id: a, category: meta, prompt: p, options: [{label: x, score: 150}]}]}`},
		{"bad severity", `version: "1"
segments: [{model: products, groups: [g]}]
groups: {g: [{id: a, category: meta, prompt: p, options: [{label: x, score: 0, actionPlan: {title: t, body: b, severity: low}}]}]}`},
		{"not yaml", `version: [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestActionPlanParts(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	seg, err := c.Segment(model.BusinessProducts)
	require.NoError(t, err)

	q := seg.Questions[0]
	require.Equal(t, "signal_resilience", q.ID)
	plan := q.Options[1].ActionPlan
	require.NotNil(t, plan)
	assert.Contains(t, plan.Excuse(), "iOS 14")
	assert.Contains(t, plan.Verdict(), "Conversions API")
	assert.NotContains(t, plan.Verdict(), model.ActionPlanDelimiter)
}

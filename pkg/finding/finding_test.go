package finding

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestSeverity_Rank(t *testing.T) {
	assert.Equal(t, 0, HighRisk.Rank())
	assert.Equal(t, 1, ModerateRisk.Rank())
	assert.Equal(t, 2, Concern.Rank())
	assert.Equal(t, 3, Neutral.Rank())
	assert.Equal(t, 4, Positive.Rank())
	assert.Equal(t, 3, Severity("catastrophic").Rank())
	assert.Equal(t, 3, Severity("").Rank())

	assert.True(t, Concern.Valid())
	assert.False(t, Severity("bad").Valid())
	assert.Len(t, Severities(), 5)
}

func TestCategory_Valid(t *testing.T) {
	assert.True(t, CategoryDPD.Valid())
	assert.True(t, CategoryCompositeSignal.Valid())
	assert.False(t, Category("Weather").Valid())
}

func TestNewFinding_DeterministicID(t *testing.T) {
	a := newFinding("portfolio.delinquency", CategoryDelinquency, Positive, "text", "inference")
	b := newFinding("portfolio.delinquency", CategoryDelinquency, Positive, "text", "other inference")
	c := newFinding("portfolio.delinquency", CategoryDelinquency, Positive, "different text", "inference")

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Equal(t, "portfolio.delinquency", a.Rule)
}

func TestSort_StableBySeverity(t *testing.T) {
	list := []Finding{
		{Finding: "p1", Severity: Positive},
		{Finding: "c1", Severity: Concern},
		{Finding: "h1", Severity: HighRisk},
		{Finding: "u1", Severity: Severity("unknown")},
		{Finding: "n1", Severity: Neutral},
		{Finding: "c2", Severity: Concern},
		{Finding: "h2", Severity: HighRisk},
		{Finding: "m1", Severity: ModerateRisk},
	}

	Sort(list)

	got := make([]string, 0, len(list))
	for _, f := range list {
		got = append(got, f.Finding)
	}
	assert.Equal(t, []string{"h1", "h2", "m1", "c1", "c2", "u1", "n1", "p1"}, got)
}

func TestCountBySeverity(t *testing.T) {
	m := CountBySeverity([]Finding{{Severity: HighRisk}, {Severity: HighRisk}, {Severity: Positive}})
	assert.Equal(t, 2, m[HighRisk])
	assert.Equal(t, 1, m[Positive])
	assert.Equal(t, 0, m[Concern])
}

func TestSort_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	severities := append(Severities(), Severity("other"))

	properties.Property("ranks are non-decreasing after sort", prop.ForAll(
		func(values []int) bool {
			list := make([]Finding, len(values))
			for i, v := range values {
				list[i] = Finding{Severity: severities[v]}
			}
			Sort(list)
			for i := 1; i < len(list); i++ {
				if list[i-1].Severity.Rank() > list[i].Severity.Rank() {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, len(severities)-1)),
	))

	properties.TestingRun(t)
}

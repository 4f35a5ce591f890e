package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const scenarioD = "Pasta\nSastojci:\n- Testenina\n- Paradajz\nPriprema:\n1. Prokuvati\n2. Dodati sos\nVreme pripreme: 20 min\nReceptomat savet: Dodajte bosiljak za bolji ukus."

func TestScenarioD(t *testing.T) {
	d := DetailParser{}.Parse(scenarioD)

	assert.Equal(t, "Pasta", d.Title)
	assert.Equal(t, []string{"Testenina", "Paradajz"}, d.Ingredients)
	assert.Equal(t, []string{"Prokuvati", "Dodati sos"}, d.Steps)
	assert.Equal(t, "20 min", d.Time)
	assert.Equal(t, "Dodajte bosiljak za bolji ukus.", d.Tip)
}

func TestDetailDefaults(t *testing.T) {
	d := DetailParser{}.Parse("")

	assert.Equal(t, DetailTitleLoading, d.Title)
	assert.Equal(t, DetailTimeLoading, d.Time)
	assert.Empty(t, d.Tip)
	assert.Empty(t, d.Ingredients)
	assert.Empty(t, d.Steps)
}

func TestDetailMarkdownCleanup(t *testing.T) {
	text := "## **Musaka od krompira**\n---\n**Sastojci:**\n• 1 kg krompira\n2. 500 g mlevenog mesa\nJaja po želji\n===\n**Priprema:**\n1 Oljuštiti krompir\nPeći 40 minuta\n**Vreme pripreme:** 90 min"
	d := DetailParser{}.Parse(text)

	assert.Equal(t, "Musaka od krompira", d.Title)
	assert.Equal(t, []string{"1 kg krompira", "500 g mlevenog mesa", "Jaja po želji"}, d.Ingredients)
	assert.Equal(t, []string{"Oljuštiti krompir", "Peći 40 minuta"}, d.Steps)
	assert.Equal(t, "90 min", d.Time)
	assert.Empty(t, d.Tip)
}

func TestTipIsTerminal(t *testing.T) {
	text := "Pasta\nSastojci:\n- Testenina\nReceptomat savet:\nPoslužite toplo.\nSastojci:\n- Bosiljak\nPriprema:\n1. Ukrasiti\nReceptomat savet: ponovo"
	d := DetailParser{}.Parse(text)

	assert.Equal(t, []string{"Testenina"}, d.Ingredients)
	assert.Empty(t, d.Steps)
	assert.Equal(t, "Poslužite toplo. Sastojci: - Bosiljak Priprema: 1. Ukrasiti", d.Tip)
}

func TestTipHeaderWinsOverSectionWords(t *testing.T) {
	d := DetailParser{}.Parse("Supa\nPriprema:\n1. Kuvati\nReceptomat savet: Priprema unapred štedi vreme.")

	assert.Equal(t, []string{"Kuvati"}, d.Steps)
	assert.Equal(t, "Priprema unapred štedi vreme.", d.Tip)
}

func TestTimeLineKeepsSection(t *testing.T) {
	d := DetailParser{}.Parse("Čorba\nPriprema:\n1. Iseckati\nVreme pripreme: 30 min\n2. Kuvati")

	assert.Equal(t, "30 min", d.Time)
	assert.Equal(t, []string{"Iseckati", "Kuvati"}, d.Steps)
}

func TestTimeHeaderOnlyStrippedAtLineStart(t *testing.T) {
	d := DetailParser{}.Parse("Gulaš\nUkupno vreme pripreme: 2 sata")
	assert.Equal(t, "Ukupno vreme pripreme: 2 sata", d.Time)

	d = DetailParser{}.Parse("Gulaš\nVREME PRIPREME:   90 min")
	assert.Equal(t, "90 min", d.Time)
}

func TestDetailPartialStream(t *testing.T) {
	p := DetailParser{}
	assert.Equal(t, DetailTitleLoading, p.Parse("").Title)

	d := p.Parse("Pasta\nSastojci:\n- Teste")
	assert.Equal(t, "Pasta", d.Title)
	assert.Equal(t, []string{"Teste"}, d.Ingredients)
	assert.Equal(t, DetailTimeLoading, d.Time)
}

func TestDetailMachineTransitions(t *testing.T) {
	tests := []struct {
		from detailState
		line string
		to   detailState
	}{
		{stateNone, "Naslov", stateNone},
		{stateNone, "Sastojci:", stateIngredients},
		{stateIngredients, "Priprema:", stateSteps},
		{stateSteps, "Vreme pripreme: 5 min", stateSteps},
		{stateSteps, "Receptomat savet: x", stateTip},
		{stateTip, "Sastojci:", stateTip},
	}
	for _, tt := range tests {
		m := &detailMachine{state: tt.from}
		assert.Equal(t, tt.to, m.step(tt.line), "%s + %q", tt.from, tt.line)
	}
}

package recipe

import (
	"fmt"
	"strings"
)

const receptomatIntro = "Ti si Receptomat, AI kulinarska čarobnica koja pomaže u kreiranju recepata."

var focusLines = map[Focus]string{
	FocusQuick:      "Fokus na brze recepte do 30 minuta.",
	FocusEasy:       "Fokus na jednostavne recepte za početnike.",
	FocusHealthy:    "Fokus na zdrave i nutritivne recepte.",
	FocusComfort:    "Fokus na tradicionalne, site recepte.",
	FocusVegetarian: "Fokus na vegetarijanske recepte bez mesa.",
	FocusDessert:    "Fokus na deserte i slatka jela.",
}

// personWord 1 osobu, 2-4 osobe, 5+ osoba
func personWord(servings int) string {
	switch {
	case servings == 1:
		return "osobu"
	case servings < 5:
		return "osobe"
	default:
		return "osoba"
	}
}

// buildListPrompt 產生清單生成的 system 與 user 提示
func buildListPrompt(req ListRequest, previous []string) (string, string) {
	var b strings.Builder
	people := strings.ToUpper(personWord(req.Servings))

	b.WriteString(receptomatIntro)
	b.WriteString("\n\nKRITIČNO VAŽNO:\n")
	fmt.Fprintf(&b, "- Generiši TAČNO %d različitih recepata\n", req.TargetCount)
	b.WriteString("- SVAKI odgovor MORA počinjati sa ###1\n")
	b.WriteString("- NE DODAVAJ nikakav tekst pre prvog recepta\n")
	b.WriteString("- NE OBJAŠNJAVAJ šta radiš\n")
	fmt.Fprintf(&b, "- SVI RECEPTI MORAJU BITI ZA %d %s\n", req.Servings, people)

	titleHint := "[Naziv recepta]"
	if len(previous) > 0 {
		titleHint = "[Naziv recepta - SLIČAN postojećima]"
		b.WriteString("\nVAŽNO - GENERIŠI SLIČNE RECEPTE:\n")
		fmt.Fprintf(&b, "Već postojeći recepti: %s\n\n", strings.Join(previous, ", "))
		fmt.Fprintf(&b, "ZADATAK: Generiši %d NOVIH recepata koji su SLIČNI postojećima po:\n", req.TargetCount)
		b.WriteString("- Stilu kuvanja (npr. ako su postojeći pečeni, generiši još pečenih)\n")
		b.WriteString("- Vrsti jela (npr. ako su postojeći deserti, generiši još deserata)\n")
		b.WriteString("- Glavnim sastojcima (koristi slične sastojke)\n")
		b.WriteString("- Složenosti (održi sličan nivo težine)\n")
	} else {
		b.WriteString("- PRIORITET: Prvo daj recepte gde ne nedostaju sastojci (osim osnovnih kao so, biber, ulje)\n")
	}

	b.WriteString("\nFormat odgovora (OBAVEZNO):\n")
	for i := 1; i <= req.TargetCount; i++ {
		if i > 1 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "###%d\n%s\n", i, titleHint)
		b.WriteString("Opis: [detaljniji i zanimljiviji opis recepta - 2-3 rečenice o ukusu, teksturi i načinu pripreme]\n")
		b.WriteString("Način pripreme: [glavne tehnike]\n")
		b.WriteString("Vreme pripreme: [vreme]\n")
		b.WriteString("Težina: [lako/srednje/teško]\n")
		fmt.Fprintf(&b, "Porcije: %d\n", req.Servings)
		b.WriteString("Nedostaju: [glavni sastojci koji fale, ili \"ništa\" ako imaš sve - NE RAČUNAJ so, biber, ulje, vodu kao nedostajuće]\n")
	}

	if len(previous) > 0 {
		b.WriteString("\nRecepti treba da budu različiti ali SLIČNI postojećima po stilu i vrsti.")
	} else {
		b.WriteString("\nRecepti treba da budu različiti po načinu pripreme i ukusu.")
	}

	return b.String(), buildListUserPrompt(req)
}

// buildListUserPrompt 食材、份數、方向與使用者的補充說明
func buildListUserPrompt(req ListRequest) string {
	var b strings.Builder
	if len(req.Ingredients) > 0 {
		fmt.Fprintf(&b, "Dostupni sastojci: %s.\n", strings.Join(req.Ingredients, ", "))
		fmt.Fprintf(&b, "Broj porcija: %d.\n", req.Servings)
	}
	if line, ok := focusLines[req.Focus]; ok {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if extra := strings.TrimSpace(req.PromptExtra); extra != "" {
		b.WriteString(extra)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// scalingHint 依份數提示食材用量；1、2、4 以外一律視為大份量
func scalingHint(servings int) string {
	switch servings {
	case 1:
		return "Za 1 osobu koristi MANJE količine sastojaka."
	case 2:
		return "Za 2 osobe koristi standardne količine sastojaka."
	case 4:
		return "Za 4 osobe koristi DUPLO VIŠE sastojaka nego za 2 osobe."
	default:
		return "Za 6+ osoba koristi TROSTRUKO VIŠE sastojaka nego za 2 osobe."
	}
}

// buildDetailPrompt 產生完整食譜的 system 與 user 提示
func buildDetailPrompt(req DetailRequest) (string, string) {
	people := fmt.Sprintf("%d %s", req.Servings, personWord(req.Servings))

	var b strings.Builder
	b.WriteString("Ti si Receptomat, AI kulinarska čarobnica. Napiši detaljan recept u sledećem formatu:\n\n")
	b.WriteString("[Naziv recepta]\n\n")
	b.WriteString("Sastojci:\n")
	fmt.Fprintf(&b, "- [sastojak 1 sa PRECIZNOM količinom za %s]\n", people)
	fmt.Fprintf(&b, "- [sastojak 2 sa PRECIZNOM količinom za %s]\n", people)
	b.WriteString("...\n\n")
	b.WriteString("Priprema:\n1. [korak 1]\n2. [korak 2]\n...\n\n")
	b.WriteString("Vreme pripreme: [ukupno vreme]\n\n")
	b.WriteString("Receptomat savet: [koristan kulinarski savet - kako da jelo bude ukusnije, lepše, uz koje piće se slaže, kako da se servira - OBAVEZNO NAPIŠI KOMPLETAN SAVET U JEDNOJ REČENICI]\n\n")
	b.WriteString("KRITIČNO VAŽNO ZA SKALIRANJE SASTOJAKA:\n")
	b.WriteString("- Za 1 osobu: koristi MANJE količine nego za 2 osobe\n")
	b.WriteString("- Za 2 osobe: koristi standardne količine\n")
	b.WriteString("- Za 4 osobe: koristi DUPLO VIŠE nego za 2 osobe\n")
	b.WriteString("- Za 6+ osoba: koristi TROSTRUKO VIŠE nego za 2 osobe\n\n")
	b.WriteString("VAŽNO:\n")
	fmt.Fprintf(&b, "- Sve količine sastojaka moraju biti LOGIČNO prilagođene za TAČNO %s\n", people)
	b.WriteString("- Koristi precizne mere (grame, mililitre, kašike, šolje)\n")
	b.WriteString("- Sa jasnim koracima\n")
	b.WriteString("- OBAVEZNO završi sa kompletnim kulinarskim savetom u sekciji \"Receptomat savet\"")

	user := fmt.Sprintf("Napiši kompletan recept za \"%s\" koristeći sledeće sastojke: %s.\n\nVAŽNO: Recept mora biti za %s sa PRAVILNO SKALIRANIM količinama sastojaka.\n\n%s",
		req.RecipeName,
		strings.Join(req.Ingredients, ", "),
		people,
		scalingHint(req.Servings),
	)

	return b.String(), user
}

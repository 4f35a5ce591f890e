package chat

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"receptomat/internal/core/ai/provider"
	"receptomat/internal/pkg/common"
	"receptomat/internal/pkg/metrics"

	"go.uber.org/zap"
)

// MaxQuestionLength 問題的最大字元數
const MaxQuestionLength = 500

// Greeting 對話開始（或清空）時顯示的歡迎訊息
const Greeting = "Zdravo! 👋 Ja sam Receptomat, tvoj pozitivni kulinarski asistent! Pitaj me bilo šta o kuvanju - uvek ću ti naći rešenje! 👨‍🍳✨"

const systemPrompt = `Ti si Receptomat Bot, pozitivni AI kulinarski asistent koji UVEK POMAŽE i UVEK NUDI REŠENJA!

KLJUČNE KARAKTERISTIKE:
- NIKAD ne kažeš "ne možeš", "nemoguće", "bez toga ne ide"
- UVEK ponudiš KREATIVNE ALTERNATIVE i ZAMENE
- UVEK daš POZITIVNE predloge kako da se napravi jelo
- Fokusiraš se na REŠENJA, ne na probleme

TVOJA EKSPERTIZA:
- Recepti i kuvanje (GLAVNA TEMA)
- Kreativne zamene sastojaka
- Tehnike pripreme hrane
- Kulinarski saveti i trikovi
- Načini čuvanja hrane
- Nutritivne informacije o hrani

VAŽNO PONAŠANJE:
- Ako neko pita kako da napravi jelo bez nekih sastojaka → ODMAH predloži zamene!
- Ako nema osnovne sastojke → predloži ALTERNATIVNE recepte sa onim što ima
- Ako pita o ne-kulinarskim temama → ljubazno preusmeri na kuvanje
- Odgovori kratko, jasno i POZITIVNO (maksimalno 2-3 rečenice)
- Koristi emoji da budeš prijateljski nastrojen
- Govori na srpskom jeziku

PRIMERI POZITIVNIH ODGOVORA:
❌ "Ne možeš napraviti palačinke bez brašna"
✅ "Odlično! Umesto brašna koristi ovsene pahuljice ili bananu! Evo kako..."

❌ "Bez mleka nema palačinki"
✅ "Super izazov! Umesto mleka koristi vodu + malo ulja, ili biljno mleko!"`

// ChunkHandler 以目前累積的回答呼叫
type ChunkHandler func(accumulated string)

// Assistant 烹飪問答；每個問題獨立，不保留對話歷史
type Assistant struct {
	ai provider.StreamProvider
}

// NewAssistant 創建問答助理
func NewAssistant(ai provider.StreamProvider) *Assistant {
	return &Assistant{ai: ai}
}

// buildPrompt 產生問答的 system 與 user 提示
func buildPrompt(question string) (string, string) {
	return systemPrompt, `Pitanje korisnika: "` + question + `"`
}

// Ask 串流回答一個問題，回傳完整回答
func (a *Assistant) Ask(ctx context.Context, question string, onChunk ChunkHandler) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", common.NewValidationError("question is required")
	}
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return "", common.NewValidationError("question is too long")
	}

	start := time.Now()
	system, user := buildPrompt(question)

	var acc strings.Builder
	err := a.ai.GenerateStream(ctx, provider.NewRequest(system, user), func(chunk string) error {
		acc.WriteString(chunk)
		if onChunk != nil {
			onChunk(acc.String())
		}
		return nil
	})
	if err != nil {
		metrics.ObserveRound(metrics.KindChat, metrics.StatusError, time.Since(start))
		common.LogError("問答生成失敗", zap.Int("question_length", len(question)), zap.Error(err))
		return "", common.WrapError(common.ErrChatFailed, err)
	}

	answer := strings.TrimSpace(acc.String())
	if answer == "" {
		metrics.ObserveRound(metrics.KindChat, metrics.StatusError, time.Since(start))
		return "", common.ErrChatFailed
	}

	metrics.ObserveRound(metrics.KindChat, metrics.StatusSuccess, time.Since(start))
	common.LogDebug("問答完成", zap.Int("answer_length", len(answer)), zap.Duration("耗時", time.Since(start)))
	return answer, nil
}

package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Language selects the prompt and fallback wording.
type Language string

const (
	LangPolish  Language = "pl"
	LangEnglish Language = "en"
)

func (l Language) Valid() bool {
	return l == LangPolish || l == LangEnglish
}

// minAnswerLen is the groundedness floor: anything shorter is treated as a
// degenerate generation and replaced with the "I don't know" sentinel.
const minAnswerLen = 5

type promptSet struct {
	system        string
	contextLabel  string
	questionLabel string
	answerLabel   string
	dontKnow      string
	apology       string
}

var prompts = map[Language]promptSet{
	LangPolish: {
		system: "Jesteś pomocnym asystentem. Odpowiadaj wyłącznie na podstawie poniższego kontekstu. " +
			"Jeśli odpowiedzi nie ma w kontekście, odpowiedz: 'Nie wiem.'",
		contextLabel:  "Kontekst",
		questionLabel: "Pytanie",
		answerLabel:   "Odpowiedź",
		dontKnow:      "Nie wiem.",
		apology:       "Przepraszam, wystąpił błąd podczas generowania odpowiedzi.",
	},
	LangEnglish: {
		system: "You are a helpful assistant. Answer ONLY based on the context below. " +
			"If the answer is not in the context, say: 'I don't know.'",
		contextLabel:  "Context",
		questionLabel: "Question",
		answerLabel:   "Answer",
		dontKnow:      "I don't know.",
		apology:       "Sorry, an error occurred while generating the answer.",
	},
}

// DontKnow returns the language's "I don't know" sentinel.
func DontKnow(lang Language) string {
	return prompts[lang].dontKnow
}

// NoDocuments returns the answer used when retrieval finds nothing at all.
func NoDocuments(lang Language) string {
	if lang == LangEnglish {
		return "I could not find relevant information in the database. Please upload documents first."
	}
	return "Nie znalazłem odpowiednich informacji w bazie danych. Proszę najpierw załadować dokumenty."
}

// Synthesizer turns retrieved context and a query into a grounded answer.
type Synthesizer struct {
	backend Completer
}

func NewSynthesizer(backend Completer) *Synthesizer {
	return &Synthesizer{backend: backend}
}

// Synthesize builds the grounding prompt and invokes the generation backend.
// Backend failures are downgraded to a language-specific apology string: a
// degraded answer is still a usable response, an HTTP 500 is not. The
// groundedness guard replaces answers that merely echo the context, or that
// are implausibly short, with the "I don't know" sentinel.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, contexts []string, lang Language) string {
	p := prompts[lang]
	contextText := strings.Join(contexts, "\n")

	messages := []Message{
		{Role: "system", Content: p.system},
		{Role: "user", Content: fmt.Sprintf("<%s>\n%s\n</%s>", p.contextLabel, contextText, p.contextLabel)},
		{Role: "user", Content: fmt.Sprintf("<%s>%s</%s>\n<%s>", p.questionLabel, query, p.questionLabel, p.answerLabel)},
	}

	answer, err := s.backend.Complete(ctx, messages)
	if err != nil {
		log.Printf("answer generation failed: %v", err)
		return p.apology
	}

	answer = strings.TrimSpace(answer)
	if answer == strings.TrimSpace(contextText) || len(answer) < minAnswerLen {
		return p.dontKnow
	}
	return answer
}

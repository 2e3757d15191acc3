// Package chat orchestrates a chat turn: crisis gate first, then retrieval,
// then generation.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/destek-ai/destek/internal/crisis"
	"github.com/destek-ai/destek/internal/embedding"
	"github.com/destek-ai/destek/internal/llm"
	"github.com/destek-ai/destek/internal/models"
	"github.com/destek-ai/destek/internal/retrieve"
)

// EmergencyMessage is returned verbatim whenever the crisis gate fires.
// Nothing a caller sends can suppress it.
const EmergencyMessage = "Şu an çok zor bir dönemden geçiyor olabilirsin ve bunu benimle paylaşman değerli. " +
	"Ancak ben bir yapay zekâ asistanıyım ve acil durumlarda sana yeterli desteği veremem. " +
	"Lütfen hemen 112 Acil Çağrı Merkezi'ni ara veya sana en yakın acil servise başvur. " +
	"Güvendiğin bir yakınına da haber vermeni öneririm. Yalnız değilsin."

// degradedReply is returned when the generation backend fails. The crisis
// gate has already run by then, so a backend outage degrades quality, not
// safety.
const degradedReply = "Şu anda yanıt üretemiyorum, teknik bir sorun yaşıyorum. " +
	"Lütfen birazdan tekrar dener misin? Bu arada acil bir durumdaysan 112'yi arayabilirsin."

// RetrieverSource hands out the current retriever. The resource bundle
// provider implements it; returning an error means the vector store has not
// loaded yet.
type RetrieverSource interface {
	Retriever() (*retrieve.Retriever, error)
}

// Responder runs the full chat turn pipeline.
type Responder struct {
	gate        *crisis.Gate
	embedder    embedding.Embedder
	retrievers  RetrieverSource
	generator   llm.Generator
	defaultTopK int
	logger      *zap.Logger
}

// Option configures a Responder.
type Option func(*Responder)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Responder) {
		r.logger = logger
	}
}

// NewResponder wires the chat pipeline.
func NewResponder(gate *crisis.Gate, embedder embedding.Embedder, retrievers RetrieverSource, generator llm.Generator, defaultTopK int, opts ...Option) *Responder {
	if defaultTopK <= 0 {
		defaultTopK = 3
	}
	r := &Responder{
		gate:        gate,
		embedder:    embedder,
		retrievers:  retrievers,
		generator:   generator,
		defaultTopK: defaultTopK,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond handles one chat turn. The crisis gate always runs before anything
// else; a crisis verdict short-circuits retrieval and generation entirely.
func (r *Responder) Respond(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	decision := r.gate.Evaluate(ctx, req.Query)
	if decision.IsCrisis {
		r.logger.Warn("crisis gate fired",
			zap.Float64("score", decision.Score),
			zap.String("session_id", req.SessionID))
		return models.ChatResponse{Reply: EmergencyMessage, Sources: []string{}, IsCrisis: true}, nil
	}

	k := req.K
	if k <= 0 {
		k = r.defaultTopK
	}

	retriever, err := r.retrievers.Retriever()
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("retrieval unavailable: %w", err)
	}

	chunks, sources := r.retrieveContext(ctx, retriever, req.Query, k)
	prompt := buildSystemPrompt(chunks, req.Profile)

	reply, err := r.generator.Generate(ctx, prompt, req.History, req.Query)
	if err != nil {
		r.logger.Error("generation failed, returning degraded reply", zap.Error(err))
		return models.ChatResponse{Reply: degradedReply, Sources: sources, IsCrisis: false}, nil
	}
	return models.ChatResponse{Reply: reply, Sources: sources, IsCrisis: false}, nil
}

// retrieveContext embeds the query and fetches top-k chunks. Failures here
// degrade to an empty context block rather than aborting the turn.
func (r *Responder) retrieveContext(ctx context.Context, retriever *retrieve.Retriever, query string, k int) ([]models.RetrievedChunk, []string) {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Error("query embedding failed, answering without context", zap.Error(err))
		return nil, []string{}
	}
	chunks, err := retriever.Retrieve(queryVec, k)
	if err != nil {
		r.logger.Error("retrieval failed, answering without context", zap.Error(err))
		return nil, []string{}
	}
	return chunks, dedupeSources(chunks)
}

// buildSystemPrompt renders the therapist role prompt with the retrieved
// context block and optional user profile.
func buildSystemPrompt(chunks []models.RetrievedChunk, profile *models.Profile) string {
	var context strings.Builder
	for _, c := range chunks {
		context.WriteString("- ")
		context.WriteString(c.Text)
		context.WriteString("\n")
	}

	var b strings.Builder
	b.WriteString("Sen Bilişsel Davranışçı Terapi (BDT) tekniklerini uygulayan, empatik bir yapay zeka psikoloji asistanısın.\n\n")
	b.WriteString("Aşağıdaki KİTAP BİLGİLERİNİ (CONTEXT) referans alarak cevap ver:\n")
	b.WriteString(context.String())
	b.WriteString("\nKURALLAR:\n")
	b.WriteString("1. Sohbet geçmişine bakarak tutarlı ol.\n")
	b.WriteString("2. ASLA \"Kitapta şöyle yazar\" deme, bilgiyi sohbetin içine doğal bir şekilde yedir.\n")
	b.WriteString("3. Kullanıcıya Sokratik sorular sorarak (örn: \"Bu düşüncenin kanıtı ne?\") farkındalık kazandır.\n")
	b.WriteString("4. Empatik, sıcak ve yargısız ol.\n")
	b.WriteString("5. ASLA tıbbi teşhis koyma. İntihar eğilimi sezersen 112'ye yönlendir.\n")

	if profile != nil {
		b.WriteString("\nKULLANICI PROFİLİ:\n")
		if profile.Name != "" {
			fmt.Fprintf(&b, "- İsim: %s\n", profile.Name)
		}
		if profile.Age > 0 {
			fmt.Fprintf(&b, "- Yaş: %d\n", profile.Age)
		}
		if profile.Gender != "" {
			fmt.Fprintf(&b, "- Cinsiyet: %s\n", profile.Gender)
		}
	}
	return b.String()
}

// dedupeSources returns the distinct chunk sources in first-seen order.
func dedupeSources(chunks []models.RetrievedChunk) []string {
	seen := make(map[string]bool, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c.Source == "" || seen[c.Source] {
			continue
		}
		seen[c.Source] = true
		sources = append(sources, c.Source)
	}
	return sources
}

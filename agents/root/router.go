package root

import (
	"context"
	"strings"

	"github.com/carebridge-project/carebridge-multi-agent/llm"
	"github.com/carebridge-project/carebridge-multi-agent/logger"
)

// Specialist identifiers known to the router.
const (
	TargetENT       = "ent"
	TargetGynec     = "gynec"
	TargetPhysician = "physician"
)

var entKeywords = []string{
	"ear", "nose", "throat", "sinus", "hearing", "tonsil", "voice", "hoarse", "smell",
}

var gynecKeywords = []string{
	"period", "menstrual", "menstruation", "pregnan", "gynec", "ovar", "uterus", "cervical", "contracepti",
}

// Router picks the specialist for a consultation turn. Keywords decide
// first; an optional model breaks ties for phrasings the keyword lists
// miss. The general physician takes everything else.
type Router struct {
	llm llm.Client
	log *logger.Logger
}

func NewRouter(client llm.Client, log *logger.Logger) *Router {
	if log == nil {
		log = logger.New()
	}
	return &Router{llm: client, log: log}
}

const routerPrompt = "You route healthcare questions to one of three specialists. " +
	"Answer with exactly one word: ent, gynec, or physician."

// Route returns the specialist identifier for the given text.
func (r *Router) Route(ctx context.Context, text string) string {
	lower := strings.ToLower(text)
	for _, k := range entKeywords {
		if strings.Contains(lower, k) {
			return TargetENT
		}
	}
	for _, k := range gynecKeywords {
		if strings.Contains(lower, k) {
			return TargetGynec
		}
	}

	if r.llm != nil {
		if out, err := r.llm.Chat(ctx, routerPrompt, text); err == nil {
			switch strings.ToLower(strings.TrimSpace(out)) {
			case TargetENT:
				return TargetENT
			case TargetGynec:
				return TargetGynec
			case TargetPhysician:
				return TargetPhysician
			}
			r.log.WithField("verdict", out).Warn("router model verdict unrecognized")
		}
	}

	return TargetPhysician
}

package root

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type verdictLLM struct {
	verdict string
	err     error
}

func (v *verdictLLM) Chat(context.Context, string, string) (string, error) {
	return v.verdict, v.err
}

func TestRouterKeywords(t *testing.T) {
	r := NewRouter(nil, nil)
	ctx := context.Background()

	assert.Equal(t, TargetENT, r.Route(ctx, "My EAR has been ringing"))
	assert.Equal(t, TargetENT, r.Route(ctx, "blocked sinus again"))
	assert.Equal(t, TargetGynec, r.Route(ctx, "my period is late"))
	assert.Equal(t, TargetGynec, r.Route(ctx, "questions about pregnancy"))
	assert.Equal(t, TargetPhysician, r.Route(ctx, "I have a mild fever"))
}

func TestRouterModelFallback(t *testing.T) {
	r := NewRouter(&verdictLLM{verdict: " Gynec \n"}, nil)
	assert.Equal(t, TargetGynec, r.Route(context.Background(), "cramps every month"))
}

func TestRouterModelUnrecognizedVerdict(t *testing.T) {
	r := NewRouter(&verdictLLM{verdict: "dermatology"}, nil)
	assert.Equal(t, TargetPhysician, r.Route(context.Background(), "itchy skin"))
}

func TestRouterModelError(t *testing.T) {
	r := NewRouter(&verdictLLM{err: errors.New("down")}, nil)
	assert.Equal(t, TargetPhysician, r.Route(context.Background(), "strange symptom"))
}

func TestRouterKeywordsBeatModel(t *testing.T) {
	r := NewRouter(&verdictLLM{verdict: TargetPhysician}, nil)
	assert.Equal(t, TargetENT, r.Route(context.Background(), "my throat hurts"))
}

package root

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/carebridge-project/carebridge-multi-agent/logger"
	"github.com/carebridge-project/carebridge-multi-agent/session"
	"github.com/carebridge-project/carebridge-multi-agent/storage"
)

// Intake stages, stored per session. Each turn answers exactly one
// open question; invalid answers re-ask the same question.
const (
	stageKey = "intake_stage"
	proxyKey = "intake_proxy"

	stageProxy  = "proxy"
	stageName   = "name"
	stageAge    = "age"
	stageWeight = "weight"
	stageCaller = "caller"
	stageDone   = "done"
)

const (
	welcomeLine    = "Welcome to CareBridge. Before we start, I need a few details."
	proxyQuestion  = "Are you contacting us on behalf of someone else? (yes/no)"
	nameQuestion   = "What is the patient's name?"
	ageQuestion    = "What is the patient's age?"
	ageReprompt    = "Please give the patient's age as a whole number between 0 and 150."
	weightQuestion = "What is the patient's weight in kilograms? You can reply 'skip'."
	weightReprompt = "Please give the patient's weight as a positive number of kilograms, or reply 'skip'."
	callerQuestion = "And what is your name?"
)

var skipWords = map[string]bool{"skip": true, "no": true, "none": true, "n/a": true, "-": true}

// Intake collects patient details one question per turn and registers
// the patient when the interview completes.
type Intake struct {
	sessions *session.Store
	store    *storage.RecordStore
	log      *logger.Logger
}

func NewIntake(sessions *session.Store, store *storage.RecordStore, log *logger.Logger) *Intake {
	if log == nil {
		log = logger.New()
	}
	return &Intake{sessions: sessions, store: store, log: log}
}

// Started reports whether the session's interview has begun.
func (i *Intake) Started(sessionID string) bool {
	stage, _ := i.sessions.Value(sessionID, stageKey)
	return stage != ""
}

// Done reports whether the session's interview is complete.
func (i *Intake) Done(sessionID string) bool {
	stage, _ := i.sessions.Value(sessionID, stageKey)
	return stage == stageDone
}

// Begin opens the interview and asks the first question.
func (i *Intake) Begin(sessionID string) string {
	i.sessions.SetValue(sessionID, stageKey, stageProxy)
	i.log.WithField("session_id", sessionID).Info("intake started")
	return welcomeLine + "\n" + proxyQuestion
}

// Next consumes the caller's answer to the open question and returns
// the next prompt. When the last answer arrives the record is stored
// and the returned message confirms registration.
func (i *Intake) Next(ctx context.Context, sessionID, input string) (string, error) {
	stage, _ := i.sessions.Value(sessionID, stageKey)
	answer := strings.TrimSpace(input)

	switch stage {
	case stageProxy:
		switch strings.ToLower(answer) {
		case "y", "yes":
			i.sessions.SetValue(sessionID, proxyKey, "true")
		case "n", "no":
			i.sessions.SetValue(sessionID, proxyKey, "false")
		default:
			return proxyQuestion, nil
		}
		i.sessions.SetValue(sessionID, stageKey, stageName)
		return nameQuestion, nil

	case stageName:
		if answer == "" {
			return nameQuestion, nil
		}
		i.sessions.SetValue(sessionID, session.KeyPatientName, answer)
		i.sessions.SetValue(sessionID, stageKey, stageAge)
		return ageQuestion, nil

	case stageAge:
		age, err := strconv.Atoi(answer)
		if err != nil || age < 0 || age > 150 {
			return ageReprompt, nil
		}
		i.sessions.SetValue(sessionID, session.KeyPatientAge, strconv.Itoa(age))
		i.sessions.SetValue(sessionID, stageKey, stageWeight)
		return weightQuestion, nil

	case stageWeight:
		if !skipWords[strings.ToLower(answer)] && answer != "" {
			w, err := strconv.ParseFloat(answer, 64)
			if err != nil || w <= 0 {
				return weightReprompt, nil
			}
			i.sessions.SetValue(sessionID, session.KeyPatientWeight, answer)
		}
		if proxy, _ := i.sessions.Value(sessionID, proxyKey); proxy == "true" {
			i.sessions.SetValue(sessionID, stageKey, stageCaller)
			return callerQuestion, nil
		}
		name, _ := i.sessions.Value(sessionID, session.KeyPatientName)
		i.sessions.SetValue(sessionID, session.KeyInteractantName, name)
		return i.finish(ctx, sessionID)

	case stageCaller:
		if answer == "" {
			return callerQuestion, nil
		}
		i.sessions.SetValue(sessionID, session.KeyInteractantName, answer)
		return i.finish(ctx, sessionID)

	default:
		return i.Begin(sessionID), nil
	}
}

func (i *Intake) finish(ctx context.Context, sessionID string) (string, error) {
	name, _ := i.sessions.Value(sessionID, session.KeyPatientName)
	ageStr, _ := i.sessions.Value(sessionID, session.KeyPatientAge)
	age, _ := strconv.Atoi(ageStr)

	var weight *float64
	if ws, ok := i.sessions.Value(sessionID, session.KeyPatientWeight); ok {
		if w, err := strconv.ParseFloat(ws, 64); err == nil {
			weight = &w
		}
	}

	if _, err := i.store.Insert(ctx, name, age, weight); err != nil {
		return "", err
	}

	i.sessions.SetValue(sessionID, stageKey, stageDone)
	i.log.WithFields(map[string]interface{}{
		"session_id": sessionID,
		"patient":    name,
	}).Info("intake complete")

	return fmt.Sprintf("Thank you. %s is registered. What would you like to ask our specialists?", name), nil
}

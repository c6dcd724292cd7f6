package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge-project/carebridge-multi-agent/protocol"
)

type scriptedCoordinator struct {
	replies []string
	errs    []error
	sent    []string
	once    []bool
}

func (s *scriptedCoordinator) next() (string, error) {
	i := len(s.sent) - 1
	var reply string
	var err error
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return reply, err
}

func (s *scriptedCoordinator) Send(_ context.Context, text, _ string) (string, error) {
	s.sent = append(s.sent, text)
	s.once = append(s.once, false)
	return s.next()
}

func (s *scriptedCoordinator) SendOnce(_ context.Context, text, _ string) (string, error) {
	s.sent = append(s.sent, text)
	s.once = append(s.once, true)
	return s.next()
}

func TestAuditGranted(t *testing.T) {
	coord := &scriptedCoordinator{replies: []string{
		protocol.ChallengePrompt,
		"Access granted. Here are the patient records on file:\n\nID Name Age Weight",
	}}
	agent := New(coord, "0864", nil)

	report, err := agent.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Challenged)
	assert.True(t, report.Granted)
	require.Len(t, coord.sent, 2)
	assert.Equal(t, "show records", coord.sent[0])
	assert.Equal(t, "0864", coord.sent[1])
	assert.True(t, coord.once[1], "credential turn must not retry")
	assert.False(t, coord.once[0])
}

func TestAuditDenied(t *testing.T) {
	coord := &scriptedCoordinator{replies: []string{
		protocol.ChallengePrompt,
		protocol.DeniedMessage,
	}}
	agent := New(coord, "wrong-code", nil)

	report, err := agent.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Challenged)
	assert.False(t, report.Granted)
	assert.Equal(t, protocol.DeniedMessage, report.Transcript)
}

func TestAuditNoChallenge(t *testing.T) {
	coord := &scriptedCoordinator{replies: []string{"I can help with medical questions."}}
	agent := New(coord, "0864", nil)

	report, err := agent.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Challenged)
	assert.False(t, report.Granted)
	require.Len(t, coord.sent, 1, "no credential sent without a challenge")
}

func TestAuditTransportFailure(t *testing.T) {
	coord := &scriptedCoordinator{errs: []error{errors.New("connection refused")}}
	agent := New(coord, "0864", nil)

	_, err := agent.Run(context.Background())
	require.Error(t, err)
}

func TestAuditRecognizesSecretWording(t *testing.T) {
	coord := &scriptedCoordinator{replies: []string{
		"Please provide the secret to continue.",
		protocol.DeniedMessage,
	}}
	agent := New(coord, "0864", nil)

	report, err := agent.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Challenged)
}

package server

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitsunedns/kitsunedns/internal/dns"
)

func TestTruncatedResponse(t *testing.T) {
	var answers []dns.ResourceRecord
	for i := range 60 {
		answers = append(answers, must(dns.NewA("big.example.com", 300, fmt.Sprintf("192.0.2.%d", i+1))))
	}
	msg := dns.Message{
		Header:    dns.Header{ID: 0xBEEF, Flags: dns.QRFlag | dns.AAFlag},
		Questions: []dns.Question{question("big.example.com", dns.TypeA)},
		Answers:   answers,
	}

	full, err := msg.Marshal()
	require.NoError(t, err)
	require.Greater(t, len(full), maxUDPResponseBytes, "fixture must exceed the UDP limit")

	out, err := truncatedResponse(msg)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), maxUDPResponseBytes)

	resp, err := dns.ParseMessage(out)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), resp.Header.ID)
	assert.NotZero(t, resp.Header.Flags&dns.TCFlag)
	assert.NotZero(t, resp.Header.Flags&dns.QRFlag, "original flags survive alongside TC")
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, "big.example.com", resp.Questions[0].Name)
	assert.Empty(t, resp.Answers)
	assert.Empty(t, resp.Authorities)
	assert.Empty(t, resp.Additionals)
}

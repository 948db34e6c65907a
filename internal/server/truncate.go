package server

import "github.com/kitsunedns/kitsunedns/internal/dns"

// maxUDPResponseBytes is the classic DNS ceiling for UDP replies
// (RFC 1035 Section 4.2.1). Without EDNS negotiation nothing larger can be
// assumed to survive the path to the client.
const maxUDPResponseBytes = 512

// truncatedResponse rebuilds an oversized reply as header plus question
// with TC set, dropping all record sections. The client is expected to
// retry over TCP against a resolver that speaks it.
func truncatedResponse(msg dns.Message) ([]byte, error) {
	out := dns.Message{
		Header: dns.Header{
			ID:    msg.Header.ID,
			Flags: msg.Header.Flags | dns.TCFlag,
		},
		Questions: msg.Questions,
	}
	return out.Marshal()
}

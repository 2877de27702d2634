package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/smallbiznis/serbiz/internal/payment/domain"
)

// Verifier authenticates inbound gateway deliveries. The signature
// header has the form `t=<ts>,te=<test-sig>,li=<live-sig>`; the signed
// payload is `<ts>.<raw-body>`. A missing secret rejects every
// delivery rather than waving them through.
type Verifier struct {
	secret []byte
	live   bool
}

func NewVerifier(secret string, live bool) *Verifier {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return &Verifier{live: live}
	}
	return &Verifier{secret: []byte(secret), live: live}
}

func (v *Verifier) Verify(body []byte, header string) error {
	if len(v.secret) == 0 {
		return domain.ErrMissingSecret
	}

	var timestamp, testSig, liveSig string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "te":
			testSig = value
		case "li":
			liveSig = value
		}
	}

	expected := testSig
	if v.live {
		expected = liveSig
	}
	if timestamp == "" || expected == "" {
		return domain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	computed := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computed), []byte(expected)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

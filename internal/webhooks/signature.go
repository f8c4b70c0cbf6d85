package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Callback receivers recompute HMAC-SHA256(secret, "<timestamp>.<body>") and
// compare it with the hex value in SignatureHeader. Binding the timestamp
// lets them reject replays older than their tolerance.
const (
	SignatureHeader = "X-Signature"
	TimestampHeader = "X-Signature-Timestamp"
)

// Sign returns the timestamp header value and the hex signature for body.
func Sign(secret string, body []byte, at time.Time) (ts, sig string) {
	ts = strconv.FormatInt(at.Unix(), 10)
	return ts, hex.EncodeToString(sum(secret, ts, body))
}

// Verify checks sig over ts and body, and that ts lies within tolerance of
// now. A zero tolerance skips the age check.
func Verify(secret string, body []byte, ts, sig string, now time.Time, tolerance time.Duration) bool {
	b, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	if tolerance > 0 {
		sec, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return false
		}
		age := now.Sub(time.Unix(sec, 0))
		if age < -tolerance || age > tolerance {
			return false
		}
	}
	return hmac.Equal(sum(secret, ts, body), b)
}

func sum(secret, ts string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return mac.Sum(nil)
}

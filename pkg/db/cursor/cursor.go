package cursor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// Cursor tokens are opaque to clients: base64 payload plus an HMAC signature
// keyed by CURSOR_SECRET_KEY, so a client cannot forge a position.
type Data struct {
	Datetime string `json:"datetime"`
	ID       int    `json:"id,omitempty"`
}

func hmacSignature(encoded string) string {
	mac := hmac.New(sha256.New, []byte(os.Getenv("CURSOR_SECRET_KEY")))
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verifySignature(encoded string, signature string) bool {
	expected := hmacSignature(encoded)
	return hmac.Equal([]byte(signature), []byte(expected))
}

func Encode(date string, id int) string {
	data := Data{Datetime: date, ID: id}
	jsonData, _ := json.Marshal(data)
	encoded := base64.RawURLEncoding.EncodeToString(jsonData)
	signature := hmacSignature(encoded)

	return encoded + "." + signature
}

func Decode(token string) (string, int, error) {
	parts := strings.Split(token, ".")

	if len(parts) != 2 {
		return "", 0, errors.New("invalid cursor format")
	}

	if !verifySignature(parts[0], parts[1]) {
		return "", 0, errors.New("invalid cursor signature")
	}

	decoded, err := base64.RawURLEncoding.DecodeString(parts[0])

	if err != nil {
		return "", 0, err
	}

	var data Data
	json.Unmarshal(decoded, &data)

	return data.Datetime, data.ID, nil
}

package sharing

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// apiKeyCipher encrypts the API keys robots authenticate with at external services. Keys are stored
// as armored age files.
type apiKeyCipher struct {
	identity *age.X25519Identity
}

// NewAPIKeyCipher parses the age X25519 identity keys are encrypted to.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func NewAPIKeyCipher(identity string) (*apiKeyCipher, error) {
	id, err := age.ParseX25519Identity(strings.TrimSpace(identity))
	if err != nil {
		return nil, fmt.Errorf("failed to parse age identity: %v", err)
	}
	return &apiKeyCipher{identity: id}, nil
}

func (c apiKeyCipher) encrypt(apiKey string) (string, error) {
	var buf bytes.Buffer
	armorWriter := armor.NewWriter(&buf)

	w, err := age.Encrypt(armorWriter, c.identity.Recipient())
	if err != nil {
		return "", fmt.Errorf("failed to encrypt api key: %v", err)
	}
	if _, err := io.WriteString(w, apiKey); err != nil {
		return "", fmt.Errorf("failed to encrypt api key: %v", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to encrypt api key: %v", err)
	}
	if err := armorWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to armor api key: %v", err)
	}

	return buf.String(), nil
}

func (c apiKeyCipher) decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return "", nil
	}

	r, err := age.Decrypt(armor.NewReader(strings.NewReader(encrypted)), c.identity)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt api key: %v", err)
	}

	apiKey, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt api key: %v", err)
	}

	return string(apiKey), nil
}

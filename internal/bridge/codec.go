package bridge

import (
	"fmt"

	"github.com/cloudwego/base64x"
)

// EncodeChunk encodes raw bytes for transfer across the bridge
func EncodeChunk(data []byte) string {
	return base64x.StdEncoding.EncodeToString(data)
}

// DecodeChunk decodes a bridge payload on the native side
func DecodeChunk(data string) ([]byte, error) {
	decoded, err := base64x.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode chunk: %w", err)
	}
	return decoded, nil
}

package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	commonpb "go.temporal.io/api/common/v1"

	"github.com/aswathylr-builds/order-confirmation/models"
)

func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestEncryptionCodec(t *testing.T) {
	codec, err := NewEncryptionCodec(testKey())
	require.NoError(t, err)

	// Shaped like the default JSON converter's output
	originalPayload := &commonpb.Payload{
		Metadata: map[string][]byte{
			"encoding": []byte("json/plain"),
		},
		Data: []byte(`{"orderId":"48213377","email":"a@x.com"}`),
	}

	encrypted, err := codec.Encode([]*commonpb.Payload{originalPayload})
	require.NoError(t, err)
	require.Len(t, encrypted, 1)

	assert.Equal(t, MetadataEncodingEncrypted, string(encrypted[0].Metadata["encoding"]))
	assert.NotContains(t, string(encrypted[0].Data), "a@x.com")

	// Encoding twice is a no-op
	again, err := codec.Encode(encrypted)
	require.NoError(t, err)
	assert.Equal(t, encrypted[0].Data, again[0].Data)

	decrypted, err := codec.Decode(encrypted)
	require.NoError(t, err)
	require.Len(t, decrypted, 1)

	assert.Equal(t, originalPayload.Data, decrypted[0].Data)
	assert.Equal(t, "json/plain", string(decrypted[0].Metadata["encoding"]))
}

func TestEncryptionCodec_WrongKey(t *testing.T) {
	codec, err := NewEncryptionCodec(testKey())
	require.NoError(t, err)
	encrypted, err := codec.Encode([]*commonpb.Payload{{Data: []byte("secret")}})
	require.NoError(t, err)

	otherKey := testKey()
	otherKey[0] = 0xff
	other, err := NewEncryptionCodec(otherKey)
	require.NoError(t, err)

	_, err = other.Decode(encrypted)
	assert.Error(t, err)
}

func TestNewEncryptionCodec_KeyLength(t *testing.T) {
	_, err := NewEncryptionCodec([]byte("short"))
	assert.ErrorContains(t, err, "key must be 32 bytes")
}

func TestEncryptionDataConverter(t *testing.T) {
	encryptionDC, err := NewEncryptionDataConverter(testKey())
	require.NoError(t, err)

	payload := models.OrderPayload{
		OrderID:      "48213377",
		CustomerName: "Asha Rao",
		Email:        "a@x.com",
		PhoneNumber:  "+919800000000",
		OrderTotal:   2000,
		Items:        []models.LineItem{{Name: "Widget", Quantity: 2, Price: 1000}},
	}

	payloads, err := encryptionDC.ToPayloads(payload)
	require.NoError(t, err)
	require.NotNil(t, payloads)
	require.Len(t, payloads.Payloads, 1)
	assert.Equal(t, MetadataEncodingEncrypted, string(payloads.Payloads[0].Metadata["encoding"]))

	var decoded models.OrderPayload
	require.NoError(t, encryptionDC.FromPayloads(payloads, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".encryption.key")

	key, created, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, key, KeySize)

	again, created, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, key, again)

	require.NoError(t, os.WriteFile(path, []byte("bad"), 0o600))
	_, _, err = LoadOrCreateKey(path)
	assert.Error(t, err)
}

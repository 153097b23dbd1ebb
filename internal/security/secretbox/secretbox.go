// Package secretbox cifra tokens de proveedores antes de persistirlos.
//
// El formato en reposo es base64(iv)|base64(tag)|base64(ciphertext):
// AES-256-GCM con IV aleatorio de 12 bytes por operación. El tag de
// autenticación viaja separado porque las filas persistidas guardan las
// tres partes como un único string opaco.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	nonceSize = 12 // AES-GCM nonce recomendado (96 bits)
	tagSize   = 16 // GCM tag (128 bits)
	// KeyLength es la longitud exacta requerida de la clave (AES-256).
	KeyLength = 32
	sep       = "|"
)

// ErrDecrypt se retorna ante cualquier blob inválido o manipulado:
// formato incorrecto, partes no decodificables, o fallo de autenticación
// del tag. No distingue la causa hacia el caller.
var ErrDecrypt = errors.New("secretbox: decryption failed")

// ErrKeyLength se retorna cuando la clave no tiene exactamente 32 bytes.
var ErrKeyLength = errors.New("secretbox: key must be exactly 32 bytes")

// Box cifra y descifra con una clave fija. Inmutable después de New.
type Box struct {
	aead cipher.AEAD
}

// New crea un Box. Rechaza claves que no tengan exactamente KeyLength
// bytes: nunca trunca ni rellena.
func New(key []byte) (*Box, error) {
	if len(key) != KeyLength {
		return nil, fmt.Errorf("%w: got %d", ErrKeyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Box{aead: aead}, nil
}

// Encrypt cifra plainText y devuelve base64(iv)|base64(tag)|base64(ciphertext).
// El IV es aleatorio y fresco en cada llamada.
func (b *Box) Encrypt(plainText string) (string, error) {
	iv := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("iv random: %w", err)
	}

	// Seal devuelve ciphertext||tag; separamos el tag para el formato en reposo.
	sealed := b.aead.Seal(nil, iv, []byte(plainText), nil)
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return base64.StdEncoding.EncodeToString(iv) + sep +
		base64.StdEncoding.EncodeToString(tag) + sep +
		base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt recibe base64(iv)|base64(tag)|base64(ciphertext) y devuelve el
// texto plano. Falla cerrado con ErrDecrypt: la verificación del tag la
// hace GCM internamente, nunca una comparación manual.
func (b *Box) Decrypt(blob string) (string, error) {
	parts := strings.Split(blob, sep)
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 parts, got %d", ErrDecrypt, len(parts))
	}
	iv, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: bad iv encoding", ErrDecrypt)
	}
	tag, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: bad tag encoding", ErrDecrypt)
	}
	ct, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding", ErrDecrypt)
	}
	if len(iv) != nonceSize || len(tag) != tagSize {
		return "", fmt.Errorf("%w: bad iv/tag length", ErrDecrypt)
	}

	sealed := append(append([]byte{}, ct...), tag...)
	pt, err := b.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(pt), nil
}

// ParseKey decodifica una clave configurada. Acepta base64 (std y raw),
// hex (64 chars) o raw de al menos 32 bytes; raw sobrante se trunca a 32,
// pero una clave corta se rechaza siempre.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrKeyLength
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == KeyLength {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil && len(b) == KeyLength {
		return b, nil
	}
	if len(s) == 2*KeyLength {
		if b, err := hex.DecodeString(s); err == nil {
			return b, nil
		}
	}
	raw := []byte(s)
	if len(raw) > KeyLength {
		return raw[:KeyLength], nil
	}
	if len(raw) == KeyLength {
		return raw, nil
	}
	return nil, fmt.Errorf("%w: got %d", ErrKeyLength, len(raw))
}

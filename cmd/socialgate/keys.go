package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/socialgate/internal/security/secretbox"
)

// keygenCmd genera los dos secretos que el servicio necesita: la clave
// AES del vault y el secreto HMAC de sesión. Salida lista para pegar
// en el .env.
func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Genera TOKEN_ENCRYPTION_KEY y SESSION_SIGNING_SECRET nuevos",
		RunE: func(cmd *cobra.Command, args []string) error {
			encKey := make([]byte, secretbox.KeyLength)
			if _, err := rand.Read(encKey); err != nil {
				return err
			}
			signSecret := make([]byte, 48)
			if _, err := rand.Read(signSecret); err != nil {
				return err
			}

			fmt.Printf("TOKEN_ENCRYPTION_KEY=%s\n", base64.StdEncoding.EncodeToString(encKey))
			fmt.Printf("SESSION_SIGNING_SECRET=%s\n", base64.StdEncoding.EncodeToString(signSecret))
			return nil
		},
	}
}

// encCmd cifra un valor con la TOKEN_ENCRYPTION_KEY del entorno. Útil
// para verificar la clave o sembrar blobs a mano.
func encCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enc <plaintext>",
		Short: "Cifra un valor con TOKEN_ENCRYPTION_KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := boxFromEnv()
			if err != nil {
				return err
			}
			out, err := box.Encrypt(args[0])
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

func decCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dec <blob>",
		Short: "Descifra un blob con TOKEN_ENCRYPTION_KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := boxFromEnv()
			if err != nil {
				return err
			}
			out, err := box.Decrypt(args[0])
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

func boxFromEnv() (*secretbox.Box, error) {
	_ = godotenv.Load(".env")
	raw := os.Getenv("TOKEN_ENCRYPTION_KEY")
	if raw == "" {
		return nil, fmt.Errorf("TOKEN_ENCRYPTION_KEY not set")
	}
	key, err := secretbox.ParseKey(raw)
	if err != nil {
		return nil, err
	}
	return secretbox.New(key)
}

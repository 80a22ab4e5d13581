package securitymanager

import (
	"fmt"
	"os"
	"strings"
)

// Length of a Z85 encoded CURVE key.
const keyLength = 40

// This struct is embedded in the *SecurityManager types
// to enable loading and writing keypairs.
type keyWriteLoader struct {
	public, private string
}

// Loads private and public key from the specified files.
// Does not initialize a key when the file name is DONOTREAD (for example
// when you only want to read the private key from disk -- use SetKeys() with an empty
// private key and then LoadKeys() with publicFile as DONOTREAD, leaving the public key untouched)
func (mgr *keyWriteLoader) LoadKeys(publicFile, privateFile string) error {
	if publicFile != DONOTREAD {
		var err error
		if mgr.public, err = readKey(publicFile); err != nil {
			return err
		}
	}

	if privateFile != DONOTREAD {
		var err error
		if mgr.private, err = readKey(privateFile); err != nil {
			return err
		}
	}
	return nil
}

func readKey(filename string) (string, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	// Tolerate a trailing newline from hand-edited files.
	key := strings.TrimSpace(string(b))
	if len(key) != keyLength {
		return "", fmt.Errorf("%s: key has %d != %d characters", filename, len(key), keyLength)
	}
	return key, nil
}

// Writes a keypair to the supplied files.
// If one of the file names is the constant DONOTWRITE, the function will not write to that file.
// e.g. mgr.WriteKeys("pubkey.txt", DONOTWRITE) writes only the public key.
func (mgr *keyWriteLoader) WriteKeys(publicFile, privateFile string) error {
	if publicFile != DONOTWRITE {
		if err := writeKey(publicFile, mgr.public); err != nil {
			return err
		}
	}

	if privateFile != DONOTWRITE {
		if err := writeKey(privateFile, mgr.private); err != nil {
			return err
		}
	}
	return nil
}

func writeKey(filename, key string) error {
	if len(key) != keyLength {
		return fmt.Errorf("refusing to write key of %d != %d characters", len(key), keyLength)
	}
	return os.WriteFile(filename, []byte(key), 0600)
}

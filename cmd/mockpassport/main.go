// mockpassport generates a mock ePassport document, derives the holder
// identity commitment and, optionally, writes the register circuit inputs
// and registers the commitment on a tracker.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/vocdoni/passport-z-sandbox/api/client"
	"github.com/vocdoni/passport-z-sandbox/circuits"
	"github.com/vocdoni/passport-z-sandbox/circuits/register"
	passporttest "github.com/vocdoni/passport-z-sandbox/circuits/test/passport"
	"github.com/vocdoni/passport-z-sandbox/config"
	"github.com/vocdoni/passport-z-sandbox/identity"
	"github.com/vocdoni/passport-z-sandbox/log"
)

func main() {
	conf := config.Default()
	conf.LogOutput = "stderr"
	conf.BindFlags(flag.CommandLine)
	mrz := flag.String("mrz", passporttest.SampleMRZ, "MRZ of the mock document")
	secretStr := flag.String("secret", "", "holder secret as a decimal number, random if empty")
	output := flag.String("output", "", "document JSON output file, stdout if empty")
	inputsOut := flag.String("inputs", "", "write the register circuit inputs to this file")
	registerCommitment := flag.Bool("register", false, "register the commitment on the tracker")
	flag.Parse()
	if err := conf.Validate(); err != nil {
		log.Fatal(err)
	}
	log.Init(conf.LogLevel, conf.LogOutput, nil)

	key, err := rsa.GenerateKey(rand.Reader, passporttest.MockRSABits)
	if err != nil {
		log.Fatal(err)
	}
	doc, err := passporttest.GenMockDocumentWithKeyForTest(*mrz, key)
	if err != nil {
		log.Fatalf("cannot generate document: %v", err)
	}
	if !passporttest.VerifyMockDocumentForTest(doc) {
		log.Fatal("generated document does not verify")
	}
	docJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	if err := writeOutput(*output, docJSON); err != nil {
		log.Fatal(err)
	}

	secret, err := parseSecret(*secretStr)
	if err != nil {
		log.Fatal(err)
	}
	commitment, err := identity.CommitmentFromMRZ(secret, doc.MRZ)
	if err != nil {
		log.Fatal(err)
	}
	log.Infow("identity derived", "secret", secret.String(), "commitment", commitment.String())

	if *inputsOut != "" {
		inputs, err := register.BuildInputs(&register.Request{Secret: secret, Document: doc})
		if err != nil {
			log.Fatalf("cannot build register inputs: %v", err)
		}
		data, err := circuits.MarshalInputs(inputs)
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*inputsOut, data, 0o644); err != nil {
			log.Fatal(err)
		}
		log.Infow("register inputs written", "file", *inputsOut, "circuit", inputs.CircuitID())
	}

	if *registerCommitment {
		cli, err := client.New(conf.TrackerURL)
		if err != nil {
			log.Fatalf("cannot reach the tracker: %v", err)
		}
		resp, err := cli.AddCommitment(commitment)
		if err != nil {
			log.Fatalf("cannot register the commitment: %v", err)
		}
		log.Infow("commitment registered", "index", resp.Index, "root", resp.Root.String())
	}
}

func parseSecret(s string) (*big.Int, error) {
	if s == "" {
		return identity.NewSecret()
	}
	secret, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid secret %q", s)
	}
	return secret, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(os.Stdout, string(data))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// disclose builds the disclose circuit inputs of a registered holder from
// the commitment tree published by a tracker (or a local snapshot file)
// and optionally generates the proof.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	flag "github.com/spf13/pflag"

	"github.com/vocdoni/passport-z-sandbox/api/client"
	"github.com/vocdoni/passport-z-sandbox/circuits"
	"github.com/vocdoni/passport-z-sandbox/circuits/disclose"
	"github.com/vocdoni/passport-z-sandbox/config"
	"github.com/vocdoni/passport-z-sandbox/disclosure"
	"github.com/vocdoni/passport-z-sandbox/identity"
	"github.com/vocdoni/passport-z-sandbox/log"
	"github.com/vocdoni/passport-z-sandbox/passport"
	"github.com/vocdoni/passport-z-sandbox/tree"
)

func main() {
	conf := config.Default()
	conf.LogOutput = "stderr"
	conf.BindFlags(flag.CommandLine)
	secretStr := flag.String("secret", "", "holder secret as a decimal number")
	mrz := flag.String("mrz", "", "holder MRZ")
	documentFile := flag.String("document", "", "document JSON file, used when --mrz is empty")
	snapshotFile := flag.String("snapshot", "", "commitment tree snapshot file, the tracker is used if empty")
	reveal := flag.StringToString("reveal", map[string]string{}, "attributes to reveal, e.g. nationality=required,date_of_birth=optional")
	scopeStr := flag.String("scope", "", "disclosure scope label")
	address := flag.String("address", common.Address{}.Hex(), "address bound to the proof")
	minimumAge := flag.Int("minimumAge", 18, "minimum age checked by the circuit")
	date := flag.String("date", "", "current date as YYMMDD, today (UTC) if empty")
	output := flag.String("output", "", "circuit inputs output file, stdout if empty")
	proofOut := flag.String("proof", "", "generate the proof and write it to this file")
	flag.Parse()
	if err := conf.Validate(); err != nil {
		log.Fatal(err)
	}
	log.Init(conf.LogLevel, conf.LogOutput, nil)

	secret, ok := new(big.Int).SetString(*secretStr, 10)
	if !ok {
		log.Fatalf("invalid secret %q", *secretStr)
	}
	holderMRZ, err := loadMRZ(*mrz, *documentFile)
	if err != nil {
		log.Fatal(err)
	}
	policy, err := disclosure.ParsePolicy(*reveal)
	if err != nil {
		log.Fatal(err)
	}
	scope, err := identity.ScopeFromString(*scopeStr)
	if err != nil {
		log.Fatal(err)
	}
	if !common.IsHexAddress(*address) {
		log.Fatalf("invalid address %q", *address)
	}
	currentDate := time.Now().UTC()
	if *date != "" {
		if currentDate, err = time.Parse(disclose.DateLayout, *date); err != nil {
			log.Fatalf("invalid date %q: %v", *date, err)
		}
	}

	commitments, err := loadTree(conf.TrackerURL, *snapshotFile)
	if err != nil {
		log.Fatalf("cannot load the commitment tree: %v", err)
	}
	inputs, err := disclose.BuildInputs(&disclose.Request{
		Secret:       secret,
		MRZ:          holderMRZ,
		Tree:         commitments,
		Policy:       policy,
		Scope:        scope,
		BoundAddress: common.HexToAddress(*address),
		MinimumAge:   *minimumAge,
		CurrentDate:  currentDate,
	})
	if err != nil {
		log.Fatalf("cannot build disclose inputs: %v", err)
	}
	log.Infow("disclose inputs built",
		"root", inputs.MerkleRoot.String(),
		"nullifier", inputs.Nullifier.String(),
		"revealed", inputs.Bitmap.Revealed())

	data, err := circuits.MarshalInputs(inputs)
	if err != nil {
		log.Fatal(err)
	}
	if err := writeOutput(*output, data); err != nil {
		log.Fatal(err)
	}

	if *proofOut != "" {
		artifacts, err := conf.Disclose.Artifacts(circuits.Disclose)
		if err != nil {
			log.Fatal(err)
		}
		prover := circuits.NewCircomProver(map[circuits.CircuitID]*circuits.CircuitArtifacts{
			circuits.Disclose: artifacts,
		})
		proof, err := prover.Prove(context.Background(), inputs)
		if err != nil {
			log.Fatalf("cannot generate proof: %v", err)
		}
		proofJSON, err := json.Marshal(proof)
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*proofOut, proofJSON, 0o644); err != nil {
			log.Fatal(err)
		}
		log.Infow("proof written", "file", *proofOut)
		if conf.Disclose.VerificationKeyURL != "" {
			if err := prover.Verify(context.Background(), circuits.Disclose, proof); err != nil {
				log.Fatalf("generated proof does not verify: %v", err)
			}
			log.Info("proof verified")
		}
	}
}

func loadMRZ(mrz, documentFile string) (string, error) {
	if mrz != "" {
		return mrz, nil
	}
	if documentFile == "" {
		return "", fmt.Errorf("either --mrz or --document is required")
	}
	data, err := os.ReadFile(documentFile)
	if err != nil {
		return "", err
	}
	doc := &passport.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return "", fmt.Errorf("cannot decode document: %w", err)
	}
	if err := doc.Verify(); err != nil {
		return "", err
	}
	return doc.MRZ, nil
}

func loadTree(trackerURL, snapshotFile string) (*tree.Tree, error) {
	t := tree.New(nil)
	if snapshotFile != "" {
		data, err := os.ReadFile(snapshotFile)
		if err != nil {
			return nil, err
		}
		return t, t.ImportSnapshot(data)
	}
	cli, err := client.New(trackerURL)
	if err != nil {
		return nil, err
	}
	return t, cli.FetchTree(t)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(os.Stdout, string(data))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
